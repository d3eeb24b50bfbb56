// Package cmdlog is launchcore's ambient logging surface: a small
// colorized console logger in the exact idiom of the teacher's
// internals/cmdlog, generalized with byte-count formatting
// (github.com/dustin/go-humanize) for download progress lines instead
// of the teacher's own hand-rolled Human{Uint32,Float32} helpers.
package cmdlog

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gookit/color"
)

// Logger logs pretty progress and status lines to the console.
type Logger struct {
	emojis    bool
	indention int
}

func (l *Logger) println(a string) {
	fmt.Println(strings.Repeat(" ", l.indention) + a)
}

func (l *Logger) emoji(e string) string {
	if l.emojis {
		return e + " "
	}
	return ""
}

// Headline prints a bold cyan line.
func (l *Logger) Headline(s string) {
	color.Style{color.FgCyan, color.OpBold}.Println(s)
}

// Info prints a plain line.
func (l *Logger) Info(s string) {
	l.println(s)
}

// Warn prints a bold yellow warning line.
func (l *Logger) Warn(s string) {
	color.Style{color.FgYellow, color.OpBold}.Println(l.emoji("⚠️") + s)
}

// Fail prints a bold red error line and exits with status 1, matching
// the teacher's fail-fast CLI error convention.
func (l *Logger) Fail(s string) {
	color.Style{color.FgRed, color.OpBold}.Print(l.emoji("💣") + "Error: ")
	color.Style{color.FgWhite, color.OpBold}.Println(s)
	os.Exit(1)
}

// Bytes formats a byte count for progress display.
func Bytes(n int64) string {
	return humanize.Bytes(uint64(n))
}

// NewTask returns a Task sub-logger for numbered step progress.
func (l *Logger) NewTask(end int) *Task {
	logger := *l
	return &Task{Logger: &logger, end: end}
}

// New builds a Logger with emojis enabled on non-Windows terminals and
// disabled under CI, per the teacher's own detection.
func New() *Logger {
	emojis := runtime.GOOS != "windows"
	if os.Getenv("CI") != "" {
		emojis = false
		color.Disable()
	}
	return &Logger{emojis: emojis}
}

// Task logs numbered progress steps, e.g. "[2/4] Validating assets".
type Task struct {
	*Logger
	current int
	end     int
}

// Step advances and prints the next numbered step.
func (t *Task) Step(emoji, message string) {
	t.current++
	color.Cyan.Printf("[%d/%d] %s%s\n", t.current, t.end, t.emoji(emoji), message)
}
