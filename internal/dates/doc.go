// Package dates normalizes free-form OCR date text into ISO-like YYYY-MM-DD
// strings and scores how date-like a token is.
//
// Normalization is deliberately forgiving: components that cannot be resolved
// are left blank ("1862-06-", "-06-") instead of failing, and unparseable year
// text such as "1B62" is carried through verbatim so a reviewer can see it.
package dates
