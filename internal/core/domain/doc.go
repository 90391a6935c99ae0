// Package domain contains the core business entities for Veridoc:
// documents, chunks, citations and answers, together with the
// processing status machine and the domain error taxonomy.
//
// The domain layer has no dependencies on adapters or external
// services. All types are plain values; services coordinate them.
package domain
