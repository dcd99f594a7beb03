// Package vocab holds the fixed vocabularies used by field classification:
// region names (Category A), conflict names (Category B) and calendar months.
//
// Sets are built once and are read-only afterwards. Best-match lookups are
// memoized per processed token because the same OCR fragments recur across
// many artifacts.
package vocab
