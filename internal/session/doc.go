// Package session owns the original-versus-current editing state for
// mathematical markup and drives validation and rendering from edits.
//
// Two variants share one discipline: FormulaSession edits a bare LaTeX
// string, DocumentSession edits structured document content. Both hold an
// original and a current value, derive the modified flag by structural
// comparison, gate Save on (modified AND valid AND not already saving),
// promote current to original atomically on a successful save, and expose
// an observable state snapshot for a UI layer.
//
// Rendering is gated on validity: while a syntax error is set the session
// never schedules a render, so the last valid output stays visible.
// Save and Validate both guard against re-entrancy; a second concurrent
// call while one is outstanding is a no-op.
package session
