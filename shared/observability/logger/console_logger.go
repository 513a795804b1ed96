package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/vesla0x1/codegrabber/shared/observability/types"
)

// consoleHidden lists fields that only matter to machine consumers
var consoleHidden = map[string]bool{"run_id": true, "component": true}

// ConsoleLogger renders log events as short status notices for a terminal:
//
//	[+] theme detected container=twentytwentyfour
//	[-] fetch failed: unexpected status code: 500 url=https://...
type ConsoleLogger struct {
	mu               *sync.Mutex
	output           io.Writer
	minLevel         LogLevel
	persistentFields types.Fields
	prefixes         map[LogLevel]string
}

// NewConsole creates a ConsoleLogger. A nil output defaults to os.Stderr.
// Colors are only emitted when colorize is true.
func NewConsole(logLevel string, output io.Writer, additionalFields types.Fields, colorize bool) *ConsoleLogger {
	if output == nil {
		output = os.Stderr
	}

	return &ConsoleLogger{
		mu:               &sync.Mutex{},
		output:           output,
		minLevel:         ParseLevel(logLevel),
		persistentFields: copyFields(additionalFields),
		prefixes:         buildPrefixes(colorize),
	}
}

func buildPrefixes(colorize bool) map[LogLevel]string {
	styles := map[LogLevel]*color.Color{
		DebugLevel: color.New(color.FgCyan),
		InfoLevel:  color.New(color.FgGreen, color.Bold),
		WarnLevel:  color.New(color.FgYellow, color.Bold),
		ErrorLevel: color.New(color.FgRed, color.Bold),
	}
	marks := map[LogLevel]string{
		DebugLevel: "[*]",
		InfoLevel:  "[+]",
		WarnLevel:  "[!]",
		ErrorLevel: "[-]",
	}

	prefixes := make(map[LogLevel]string, len(marks))
	for level, mark := range marks {
		style := styles[level]
		if colorize {
			style.EnableColor()
		} else {
			style.DisableColor()
		}
		prefixes[level] = style.Sprint(mark)
	}
	return prefixes
}

// Info prints a [+] notice.
func (l *ConsoleLogger) Info(ctx context.Context, msg string, fields types.Fields) {
	if l.minLevel > InfoLevel {
		return
	}
	l.print(ctx, InfoLevel, msg, nil, fields)
}

// Error prints a [-] notice with the error appended to the message.
func (l *ConsoleLogger) Error(ctx context.Context, msg string, err error, fields types.Fields) {
	if l.minLevel > ErrorLevel {
		return
	}
	l.print(ctx, ErrorLevel, msg, err, fields)
}

// Warn prints a [!] notice.
func (l *ConsoleLogger) Warn(ctx context.Context, msg string, fields types.Fields) {
	if l.minLevel > WarnLevel {
		return
	}
	l.print(ctx, WarnLevel, msg, nil, fields)
}

// Debug prints a [*] notice.
func (l *ConsoleLogger) Debug(ctx context.Context, msg string, fields types.Fields) {
	if l.minLevel > DebugLevel {
		return
	}
	l.print(ctx, DebugLevel, msg, nil, fields)
}

// WithFields returns a logger that adds fields to every notice.
func (l *ConsoleLogger) WithFields(fields types.Fields) types.Logger {
	return &ConsoleLogger{
		mu:               l.mu,
		output:           l.output,
		minLevel:         l.minLevel,
		persistentFields: mergeFields(l.persistentFields, fields),
		prefixes:         l.prefixes,
	}
}

func (l *ConsoleLogger) print(ctx context.Context, level LogLevel, msg string, err error, fields types.Fields) {
	all := mergeFields(types.ContextFields(ctx), l.persistentFields)
	for k, v := range fields {
		all[k] = v
	}

	var b strings.Builder
	b.WriteString(l.prefixes[level])
	b.WriteByte(' ')
	b.WriteString(msg)
	if err != nil {
		b.WriteString(": ")
		b.WriteString(err.Error())
	}

	keys := make([]string, 0, len(all))
	for k := range all {
		if !consoleHidden[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, all[k])
	}
	b.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.output, b.String())
}
