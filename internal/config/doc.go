// Package config loads and watches MathSeek settings.
//
// Settings live in a single TOML file. A missing file is not an error; it
// yields the defaults. The Watcher reloads the file on change and hands
// validated settings to subscribers.
package config
