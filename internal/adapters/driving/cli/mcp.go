package cli

import (
	"github.com/spf13/cobra"

	"github.com/corpora-labs/corpora-cli/internal/adapters/driving/mcp"
)

var mcpHTTPAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server",
	Long:  `Expose the collection to AI assistants over the Model Context Protocol.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start an MCP server exposing the ask, retrieve and collection_stats
tools. By default the server speaks over stdio for use by a local
assistant; pass --http to serve Streamable HTTP on an address instead.

Example Claude Desktop configuration:

  {
    "mcpServers": {
      "corpora": {
        "command": "corpora",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		server, err := mcp.NewServer(&mcp.Ports{
			Answer:     answerService,
			Collection: collectionService,
		}, version)
		if err != nil {
			return err
		}

		if mcpHTTPAddr != "" {
			return server.RunHTTP(cmd.Context(), mcpHTTPAddr)
		}
		return server.Run(cmd.Context())
	},
}

func init() {
	mcpServeCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "serve Streamable HTTP on this address instead of stdio")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
