package cascade

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands a leading ~ (the home directory) and makes path absolute. "~\" is accepted as well as "~/".
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}

	expanded := path
	if strings.HasPrefix(expanded, "~") {
		if home, _ := os.UserHomeDir(); home != "" {
			switch {
			case expanded == "~" || expanded == "~/" || expanded == `~\`:
				expanded = home
			case strings.HasPrefix(expanded, "~/") || strings.HasPrefix(expanded, `~\`):
				expanded = filepath.Join(home, expanded[2:])
			}
		}
	}

	if abs, err := filepath.Abs(expanded); err == nil {
		expanded = abs
	}
	return expanded
}
