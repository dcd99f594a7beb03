// Package textutil provides the approximate string comparison primitives used
// across classification and matching, plus filename sanitizing for labels.
//
// The primary use cases are:
//   - Normalizing noisy OCR text before comparison (Process)
//   - Scoring two strings on a 0-100 scale (Ratio, TokenSetRatio)
//   - Counting character edits for reviewer-facing listings (EditDistance)
//   - Turning a rendered record label into a safe file name (LabelFileName)
//
// Ratio is an indel similarity: substitutions cost two edits, so the score is
// 100 * (len(a) + len(b) - distance) / (len(a) + len(b)), rounded half to even.
// TokenSetRatio compares the shared and differing word sets of both inputs and
// is insensitive to word order and duplicates.
package textutil
