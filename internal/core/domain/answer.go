package domain

// Answer is the result of one retrieval-augmented query.
type Answer struct {
	// Question is the question exactly as asked.
	Question string

	// Response is the generated answer text.
	Response string

	// Retrieved are the records the answer was grounded on, in relevance
	// order. Empty when the collection held nothing relevant.
	Retrieved []QueryMatch

	// SourceCount is the number of retrieved records actually supplied to
	// the generator. Zero signals a best-effort, ungrounded answer.
	SourceCount int
}

// IngestStats aggregates the outcome of an ingestion run.
type IngestStats struct {
	// Files is the number of files successfully ingested.
	Files int

	// Documents is the number of raw documents those files yielded.
	Documents int

	// Chunks is the number of chunks embedded and stored.
	Chunks int

	// Failed is the number of files skipped because loading or storing
	// them failed.
	Failed int
}
