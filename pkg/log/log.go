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
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fileIndent   = 4  // spaces to indent file entries
	nameWidth    = 35 // Base width for filename
	statusWidth  = 12 // Width for status text
	summaryTitle = "jdconv"
)

// 🎯 FileOperation represents a converted file for logging
type FileOperation struct {
	Path         string // File path relative to the root
	Status       string // converted / unchanged / failed
	Replacements int    // Number of replacements made
	IsModified   bool   // Whether the content changed
	IsFailed     bool   // Whether processing failed
	DryRun       bool   // Whether the write was skipped
}

// 📊 RunSummary is printed once at the end of a run
type RunSummary struct {
	Root         string
	Total        int
	Converted    int
	Unchanged    int
	Failed       int
	Replacements int
	DryRun       bool
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new logger writing human output to console
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 📝 formatFileOperation formats a file operation for display
func (l *Logger) formatFileOperation(op FileOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case op.IsFailed:
		symbol = '✗'
		symbolColor = color.FgRed
	case op.IsModified && op.DryRun:
		symbol = '~'
		symbolColor = color.FgYellow
	case op.IsModified:
		symbol = '⟳'
		symbolColor = color.FgBlue
	default:
		symbol = '•'
		symbolColor = color.FgCyan
	}

	line := fmt.Sprintf("%s%s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Path),
		fmt.Sprintf("%-*s", statusWidth, op.Status))

	if op.Replacements > 0 {
		line += color.New(color.Faint).Sprintf(" %d", op.Replacements)
	}
	return line
}

// 📝 LogFileOperation logs a file operation
func (l *Logger) LogFileOperation(ctx context.Context, op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, l.formatFileOperation(op))

	l.zlog.Debug().
		Str("file", op.Path).
		Str("status", op.Status).
		Int("replacements", op.Replacements).
		Bool("is_modified", op.IsModified).
		Bool("dry_run", op.DryRun).
		Msg("file operation")
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	title := color.New(color.Bold, color.FgCyan).Sprint(summaryTitle)
	fmt.Fprintf(l.console, "\n%s %s\n\n", title, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Summary prints the end-of-run totals
func (l *Logger) Summary(s RunSummary) {
	l.mu.Lock()
	defer l.mu.Unlock()

	verb := "converted"
	if s.DryRun {
		verb = "would convert"
	}
	msg := fmt.Sprintf("%s %d of %d files (%d replacements, %d unchanged)", verb, s.Converted, s.Total, s.Replacements, s.Unchanged)

	fmt.Fprintln(l.console)
	if s.Failed > 0 {
		pterm.Error.WithWriter(l.console).Println(fmt.Sprintf("%s, %d failed", msg, s.Failed))
	} else {
		pterm.Success.WithWriter(l.console).Println(msg)
	}

	l.zlog.Info().
		Str("root", s.Root).
		Int("total", s.Total).
		Int("converted", s.Converted).
		Int("unchanged", s.Unchanged).
		Int("failed", s.Failed).
		Int("replacements", s.Replacements).
		Bool("dry_run", s.DryRun).
		Msg("run complete")
}

// 📝 Diff prints a dry-run diff for one file
func (l *Logger) Diff(path string, diff string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pterm.Info.WithWriter(l.console).WithPrefix(pterm.Prefix{Text: "DIFF", Style: pterm.Info.Prefix.Style}).Println(path)
	for _, line := range strings.Split(strings.TrimSuffix(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+"):
			fmt.Fprintln(l.console, color.GreenString("%s", line))
		case strings.HasPrefix(line, "-"):
			fmt.Fprintln(l.console, color.RedString("%s", line))
		default:
			fmt.Fprintln(l.console, line)
		}
	}
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}
