// Package latex provides a deterministic syntax checker for LaTeX math
// markup and helpers for normalizing math delimiters.
//
// The checker is a single left-to-right scan: it balances unescaped braces,
// tracks `$` math-mode state, and in strict mode rejects commands outside a
// fixed allow-list. It is pure and total: it never panics, never allocates
// proportional to nesting depth, and treats empty input as valid.
//
// Delimiter helpers strip and wrap the four standard math delimiters
// ($...$, $$...$$, \(...\), \[...\]) idempotently, which is what the
// rendering backends need for their differing input contracts.
package latex
