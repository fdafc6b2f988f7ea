package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// cliLogger writes log lines as "LEVEL msg key=value ..." to stderr. Debug lines
// are only written in verbose mode.
type cliLogger struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
}

func newLogger(out io.Writer, verbose bool) *cliLogger {
	return &cliLogger{out: out, verbose: verbose}
}

func (l *cliLogger) Debug(msg string, fields map[string]interface{}) {
	if l.verbose {
		l.write("DEBUG", msg, fields)
	}
}

func (l *cliLogger) Info(msg string, fields map[string]interface{}) {
	if l.verbose {
		l.write("INFO", msg, fields)
	}
}

func (l *cliLogger) Warn(msg string, fields map[string]interface{}) {
	l.write("WARN", msg, fields)
}

func (l *cliLogger) Error(msg string, fields map[string]interface{}) {
	l.write("ERROR", msg, fields)
}

func (l *cliLogger) write(level, msg string, fields map[string]interface{}) {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	var line strings.Builder

	line.WriteString(level)
	line.WriteByte(' ')
	line.WriteString(msg)

	for _, key := range keys {
		fmt.Fprintf(&line, " %s=%v", key, fields[key])
	}

	line.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	_, _ = io.WriteString(l.out, line.String())
}
