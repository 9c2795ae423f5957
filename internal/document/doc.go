// Package document provides the structured content model for recognized
// mathematical markup: a document is an ordered list of sections, and each
// section carries plain text plus formula fragments anchored at byte offsets
// into that text.
//
// The package provides:
//
//   - Content/Section/Formula value types with pure structural mutators
//   - Uniform boundary discipline: out-of-range calls return false or -1,
//     never panic
//   - Revision tracking so owners can detect modification in O(1)
//   - Deep structural equality for dirty checking
//   - Structural validation independent of markup syntax
//   - Result, the closed recognition-output variant (bare formula or document)
//
// A Content instance has no independent lifetime: it is exclusively owned by
// its editing session and is not safe for unsynchronized concurrent mutation.
package document
