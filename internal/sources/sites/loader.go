package sites

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader reads the allowed-sites seed file
type Loader struct {
	filePath string
}

// NewLoader creates a new sites loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Path returns the file being loaded
func (l *Loader) Path() string { return l.filePath }

// Load reads the file and returns its hosts, normalized and deduplicated in
// file order. ${VAR} references are expanded from the environment.
func (l *Loader) Load() ([]string, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read sites file: %w", err)
	}

	data = []byte(os.ExpandEnv(string(data)))

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse sites yaml: %w", err)
	}

	seen := make(map[string]bool, len(f.Sites))
	out := make([]string, 0, len(f.Sites))
	for _, raw := range f.Sites {
		host := Normalize(raw)
		if host == "" || seen[host] {
			continue
		}
		seen[host] = true
		out = append(out, host)
	}
	return out, nil
}

// Normalize turns an entry into an allow-list host. Full URLs are reduced to
// their hostname; glob patterns and bare hosts are kept, lowercased.
func Normalize(entry string) string {
	entry = strings.ToLower(strings.TrimSpace(entry))
	if strings.Contains(entry, "://") {
		u, err := url.Parse(entry)
		if err != nil {
			return ""
		}
		return u.Hostname()
	}
	// "host:port" or "host/path"
	if i := strings.IndexAny(entry, ":/"); i >= 0 {
		entry = entry[:i]
	}
	return entry
}
