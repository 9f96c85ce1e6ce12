package simplelogger

import (
	"bytes"
	"fmt"
	"os"
	"sync"
	"time"
)

// EnvVar names the environment variable holding the log file path.
const EnvVar = "DOCMODULES_LOG_FILE"

var mu sync.Mutex

// Enabled reports whether Log writes anywhere. Callers can use it to skip building expensive log arguments.
func Enabled() bool {
	return os.Getenv(EnvVar) != ""
}

// Log is a minimal printf-style logger. It appends a timestamped line to the file named by DOCMODULES_LOG_FILE.
//
// If DOCMODULES_LOG_FILE is unset/empty or the path can't be opened as a file, Log is a no-op.
func Log(format string, args ...any) {
	write("", format, args...)
}

// Prefix is a logger whose lines start with "<prefix>: ". Ex: Prefix("merge").Log("node %d", 3) logs "merge: node 3".
type Prefix string

// Log is like the package-level Log, with p prepended.
func (p Prefix) Log(format string, args ...any) {
	write(string(p), format, args...)
}

func write(prefix, format string, args ...any) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return
	}

	// Serialize open/write/close to reduce interleaving within a single process.
	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	var b bytes.Buffer
	b.WriteString(time.Now().Format("2006-01-02T15:04:05.000 "))
	if prefix != "" {
		b.WriteString(prefix)
		b.WriteString(": ")
	}
	_, _ = fmt.Fprintf(&b, format, args...)
	if b.Bytes()[b.Len()-1] != '\n' {
		_ = b.WriteByte('\n')
	}
	_, _ = f.Write(b.Bytes())
}
