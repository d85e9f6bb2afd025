package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corpora-labs/corpora-cli/internal/core/domain"
	"github.com/corpora-labs/corpora-cli/internal/core/ports/driving"
	"github.com/corpora-labs/corpora-cli/internal/progress"
)

var (
	askTopK        int
	askJSON        bool
	askShowSources bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question grounded on the ingested documents",
	Long: `Ask a question. The question is embedded, the most relevant chunks
are retrieved from the collection and a grounded answer is generated.

Requires a generation provider in the configuration. Use --show-sources
to list the chunks the answer was grounded on, or --json for
machine-readable output.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if answerService == nil {
			return fmt.Errorf("answer service not configured")
		}

		stop := progress.Spinner(progress.Enabled() && !askJSON, "thinking")
		answer, err := answerService.Answer(cmd.Context(), args[0], driving.AnswerOptions{TopK: askTopK})
		stop()
		if err != nil {
			return err
		}

		if askJSON {
			return printAnswerJSON(cmd, answer)
		}

		cmd.Println(answer.Response)
		cmd.Println()
		cmd.Printf("Sources used: %d\n", answer.SourceCount)
		if askShowSources {
			for i, m := range answer.Retrieved {
				cmd.Printf("[%d] %s (chunk %d, score %.3f)\n",
					i+1, m.Metadata.Filename, m.Metadata.ChunkIndex, m.Score)
			}
		}
		return nil
	},
}

type answerSource struct {
	Filename   string  `json:"filename"`
	Path       string  `json:"path,omitempty"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
}

type answerOutput struct {
	Question    string         `json:"question"`
	Answer      string         `json:"answer"`
	SourceCount int            `json:"source_count"`
	Sources     []answerSource `json:"sources"`
}

func printAnswerJSON(cmd *cobra.Command, answer domain.Answer) error {
	out := answerOutput{
		Question:    answer.Question,
		Answer:      answer.Response,
		SourceCount: answer.SourceCount,
		Sources:     make([]answerSource, 0, len(answer.Retrieved)),
	}
	for _, m := range answer.Retrieved {
		out.Sources = append(out.Sources, answerSource{
			Filename:   m.Metadata.Filename,
			Path:       m.Metadata.SourcePath,
			ChunkIndex: m.Metadata.ChunkIndex,
			Score:      m.Score,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func init() {
	askCmd.Flags().IntVar(&askTopK, "top-k", 0, "number of chunks to retrieve (default from config)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the answer as JSON")
	askCmd.Flags().BoolVar(&askShowSources, "show-sources", false, "list the chunks the answer was grounded on")
	rootCmd.AddCommand(askCmd)
}
