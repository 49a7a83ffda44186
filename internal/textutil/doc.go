// Package textutil provides text processing utilities for metadata
// normalization, string similarity, and filename sanitization.
//
// The primary use cases are:
//   - Normalizing tag values before comparison (case folding, diacritic
//     stripping, punctuation removal)
//   - Computing edit-distance similarity between normalized strings
//   - Sanitizing filenames and path segments for safe filesystem use
package textutil
