package driven

// ProgressReporter receives ingestion progress for interactive runs.
// A nil reporter is valid and means no feedback is wanted.
type ProgressReporter interface {
	// Start announces the total number of files about to be processed.
	Start(total int)

	// Increment marks one file as processed.
	Increment()

	// Finish closes out the report.
	Finish()
}
