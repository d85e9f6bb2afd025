// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentLoader: Parses files into raw documents
//   - TextSplitter: Splits raw text into overlapping chunks
//   - VectorStore: Stores and retrieves embedded chunks (sqlite, qdrant, weaviate)
//   - EmbeddingService: Generates vector embeddings
//
// # Optional Interfaces
//
// These can be nil depending on the operation:
//
//   - GenerationService: Synthesises grounded answers. Only the answer path
//     needs it; ingestion-only use runs without a generation credential.
//   - ProgressReporter: Ingestion progress feedback for interactive runs.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or loader package
package driven
