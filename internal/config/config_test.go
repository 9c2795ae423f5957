package config

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/dshills/mathseek/internal/latex"
	"github.com/dshills/mathseek/internal/render"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) Open(name string) (fs.File, error) {
	return nil, fs.ErrNotExist
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	l := NewLoaderWithFS(NewMemFS(), "/nope/config.toml")
	got, err := l.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Render.Engine != "mathjax" {
		t.Errorf("engine = %q, want mathjax default", got.Render.Engine)
	}
	if got.Render.DebounceMS != 300 {
		t.Errorf("debounce_ms = %d, want 300", got.Render.DebounceMS)
	}
}

func TestLoadOverridesKeepDefaults(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/config.toml", `
[render]
engine = "katex"
display_mode = "inline"

[validation]
strict = true
`)
	l := NewLoaderWithFS(memfs, "/config.toml")
	got, err := l.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	kind, err := got.EngineKind()
	if err != nil || kind != render.KaTeX {
		t.Errorf("engine kind = %v (%v), want KaTeX", kind, err)
	}
	mode, err := got.Mode()
	if err != nil || mode != latex.Inline {
		t.Errorf("mode = %v (%v), want Inline", mode, err)
	}
	if !got.Validation.Strict {
		t.Error("strict not set")
	}
	// Unset keys keep their defaults.
	if got.Render.DebounceMS != 300 {
		t.Errorf("debounce_ms = %d, want 300 default", got.Render.DebounceMS)
	}
	if got.Render.DelimiterStyle != "dollar" {
		t.Errorf("delimiter_style = %q, want dollar default", got.Render.DelimiterStyle)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		toml string
		want string
	}{
		{"bad engine", "[render]\nengine = \"troff\"\n", "render.engine"},
		{"bad mode", "[render]\ndisplay_mode = \"sideways\"\n", "display_mode"},
		{"bad style", "[render]\ndelimiter_style = \"quotes\"\n", "delimiter_style"},
		{"negative debounce", "[render]\ndebounce_ms = -5\n", "debounce_ms"},
		{"malformed toml", "[render\n", "parsing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			memfs := NewMemFS()
			memfs.AddFile("/config.toml", tt.toml)
			l := NewLoaderWithFS(memfs, "/config.toml")
			_, err := l.Load()
			if err == nil {
				t.Fatal("bad config accepted")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadFromReader(t *testing.T) {
	got, err := LoadFromReader(strings.NewReader(`
[render]
debounce_ms = 50

[render.macros]
RR = "\\mathbb{R}"

[lint]
scripts = ["rules/style.lua"]
`))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if got.Render.DebounceMS != 50 {
		t.Errorf("debounce_ms = %d, want 50", got.Render.DebounceMS)
	}
	if got.Render.Macros["RR"] != `\mathbb{R}` {
		t.Errorf("macro RR = %q", got.Render.Macros["RR"])
	}
	if len(got.Lint.Scripts) != 1 || got.Lint.Scripts[0] != "rules/style.lua" {
		t.Errorf("lint scripts = %v", got.Lint.Scripts)
	}
}

func TestSettingsConverters(t *testing.T) {
	s := Default()
	s.Render.Engine = "mathjax"
	s.Render.DelimiterStyle = "tex"
	s.Render.DebounceMS = 250

	kind, err := s.EngineKind()
	if err != nil || kind != render.MathJax {
		t.Errorf("kind = %v (%v), want MathJax", kind, err)
	}
	style, err := s.Style()
	if err != nil || style != latex.TeX {
		t.Errorf("style = %v (%v), want TeX", style, err)
	}
	if got := s.Debounce().Milliseconds(); got != 250 {
		t.Errorf("debounce = %dms, want 250", got)
	}
}
