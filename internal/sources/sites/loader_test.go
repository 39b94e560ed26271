package sites

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sites.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}
	return path
}

func TestLoaderLoad(t *testing.T) {
	path := writeFile(t, `---
sites:
  - docs.example.com
  - "*.wikipedia.org"
  - https://Blog.Example.net/posts/1
  - docs.example.com
  - ""
`)

	got, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"docs.example.com", "*.wikipedia.org", "blog.example.net"}
	if len(got) != len(want) {
		t.Fatalf("Load() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Load()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoaderLoadExpandsEnv(t *testing.T) {
	t.Setenv("RH_TEST_SITE", "intranet.example.org")
	path := writeFile(t, "sites:\n  - ${RH_TEST_SITE}\n")

	got, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 1 || got[0] != "intranet.example.org" {
		t.Errorf("Load() = %v, want [intranet.example.org]", got)
	}
}

func TestLoaderLoadEmptyFile(t *testing.T) {
	got, err := NewLoader(writeFile(t, "")).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Load() = %v, want empty", got)
	}
}

func TestLoaderLoadFileNotFound(t *testing.T) {
	_, err := NewLoader("/nonexistent/path/sites.yaml").Load()
	if err == nil {
		t.Error("Load() with non-existent file should return error")
	}
}

func TestLoaderLoadInvalidYAML(t *testing.T) {
	_, err := NewLoader(writeFile(t, "sites: [unclosed\n")).Load()
	if err == nil {
		t.Error("Load() with invalid yaml should return error")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Example.COM", "example.com"},
		{"  spaced.example.com  ", "spaced.example.com"},
		{"https://a.example.com/x?y=1", "a.example.com"},
		{"http://b.example.com:8080", "b.example.com"},
		{"c.example.com:8443", "c.example.com"},
		{"d.example.com/path", "d.example.com"},
		{"*.example.com", "*.example.com"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
