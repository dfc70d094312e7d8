// Package errors holds the ClassifiedError type every hook reports failures with.
//
// The category picks the CLI exit code. The severity tells the hook chain whether
// a failure is hook-fatal (missing counter anchor) or degrades to a warning
// (unparsable compiler version).
package errors
