// Package services implements the driving port interfaces.
// Services contain the pipeline logic and orchestrate calls to
// driven ports (loader, splitter, embedder, vector store, generator).
package services
