// Package file provides file-based configuration and prompt stores.
// Configuration lives in a TOML file; prompt templates are plain text
// files the user can edit without rebuilding.
package file
