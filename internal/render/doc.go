// Package render abstracts the two interchangeable math rendering backends
// behind one capability contract and provides the Adapter that callers
// render through.
//
// The package provides:
//
//   - Engine, the closed backend contract: Kind, Load, IsLoaded, Render
//   - Two concrete backends with differing input normalization: the
//     KaTeX-style engine takes raw source plus a display-mode flag, the
//     MathJax-style engine takes delimiter-wrapped source
//   - Adapter, which owns load-waiting with a hard timeout, per-backend
//     delimiter normalization, cross-backend fallback, and render timing
//
// Every Adapter outcome is a structured Result; nothing is ever panicked or
// returned as a bare error to the caller. The engine pair is intended to be
// constructed once per process and shared read-only by all sessions.
package render
