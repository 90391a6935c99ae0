// Package services implements the core application logic: the document
// processing pipeline, vector retrieval, prompt assembly, citation
// extraction and the library operations that tie them together.
// Services depend only on domain types and port interfaces, never on
// concrete adapters.
package services
