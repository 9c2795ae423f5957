// Package lint runs user-supplied Lua rules against LaTeX source.
//
// Rules are small scripts, each defining a check(src) function that returns
// a table of finding strings (or nil when clean). Scripts run in a
// sandboxed interpreter with no file, process, or network access.
package lint
