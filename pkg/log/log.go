// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	ruleIndent  = 6  // spaces to indent the rule table
	nameWidth   = 35 // Base width for filename
	statusWidth = 15 // Width for status text
)

// 📏 RuleCount is one rule that fired on a file
type RuleCount struct {
	Rule  string
	Count int
}

// 📄 FileReport describes what the filter did to one file
type FileReport struct {
	Path    string
	Skipped bool
	Reason  string
	Rules   []RuleCount
	Err     error
}

func (r FileReport) rewrites() int {
	total := 0
	for _, rc := range r.Rules {
		total += rc.Count
	}
	return total
}

// 🎯 Logger writes Doxygen notices to the diagnostic stream and reports to the console
type Logger struct {
	zlog    zerolog.Logger
	diag    io.Writer
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new logger. diag receives notices and structured logs, console
// receives the human readable report.
func New(diag, console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: diag, NoColor: color.NoColor}).
		With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		diag:    diag,
		console: console,
	}
}

// Zerolog returns the structured logger.
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zlog
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger, and its zerolog logger, to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	ctx = l.zlog.WithContext(ctx)
	return context.WithValue(ctx, contextKey{}, l)
}

// 📢 Notice writes a Doxygen-parsable notice for path.
func (l *Logger) Notice(path, reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.diag, "%s:0: notice: %s\n", path, reason)
	l.zlog.Debug().Str("file", path).Str("reason", reason).Msg("notice")
}

// 📝 formatFileReport formats the summary line of a file report
func (l *Logger) formatFileReport(r FileReport) string {
	var symbol string
	var status string
	switch {
	case r.Err != nil:
		symbol = color.RedString("✗")
		status = "error"
	case r.Skipped:
		symbol = color.YellowString("-")
		status = "skipped"
	case len(r.Rules) > 0:
		symbol = color.BlueString("⟳")
		status = fmt.Sprintf("%d rewrites", r.rewrites())
	default:
		symbol = color.CyanString("•")
		status = "unchanged"
	}

	line := fmt.Sprintf("%s%s %s %s",
		strings.Repeat(" ", fileIndent),
		symbol,
		fmt.Sprintf("%-*s", nameWidth, r.Path),
		fmt.Sprintf("%-*s", statusWidth, status))

	switch {
	case r.Err != nil:
		line += color.New(color.Faint).Sprint(r.Err.Error())
	case r.Skipped:
		line += color.New(color.Faint).Sprint(r.Reason)
	}
	return line
}

// 📝 formatRules renders the rules that fired as an indented table
func (l *Logger) formatRules(rules []RuleCount) (string, error) {
	data := pterm.TableData{{"rule", "rewrites"}}
	for _, rc := range rules {
		data = append(data, []string{rc.Rule, strconv.Itoa(rc.Count)})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", err
	}

	pad := strings.Repeat(" ", ruleIndent)
	var b strings.Builder
	for _, row := range strings.Split(strings.TrimRight(table, "\n"), "\n") {
		b.WriteString(pad)
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// 📝 LogFileReport prints a file report to the console
func (l *Logger) LogFileReport(ctx context.Context, r FileReport) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, l.formatFileReport(r))

	if len(r.Rules) > 0 && r.Err == nil {
		table, err := l.formatRules(r.Rules)
		if err != nil {
			l.zlog.Warn().Err(err).Str("file", r.Path).Msg("rendering rule table")
		} else {
			fmt.Fprint(l.console, table)
		}
	}

	l.zlog.Debug().
		Str("file", r.Path).
		Bool("skipped", r.Skipped).
		Int("rules", len(r.Rules)).
		Int("rewrites", r.rewrites()).
		Msg("file report")
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("phpdoxfilter")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
}

// 📝 Summary logs the totals of an explain run
func (l *Logger) Summary(total, skipped, failed int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf("%d files, %d skipped, %d failed", total, skipped, failed)
	if failed > 0 {
		fmt.Fprintf(l.console, "\n❌ %s\n", color.New(color.FgRed).Sprint(msg))
		return
	}
	fmt.Fprintf(l.console, "\n✅ %s\n", color.New(color.FgGreen).Sprint(msg))
}
