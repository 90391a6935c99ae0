// Package extractors provides text extraction implementations, one per
// supported document format, plus the registry that dispatches on the
// declared content type.
package extractors
