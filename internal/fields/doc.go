// Package fields partitions the OCR tokens of one artifact into named slots:
// name parts, one region, one conflict and up to two dates.
//
// Classification is pure and deterministic. A FieldSet is produced once per
// artifact and afterwards only changes through an explicit reviewer edit.
package fields
