package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Colors for terminal output.
var (
	bold    = color.New(color.Bold).SprintFunc()
	dim     = color.New(color.Faint).SprintFunc()
	red     = color.New(color.Bold, color.FgRed).SprintFunc()
	green   = color.New(color.Bold, color.FgGreen).SprintFunc()
	yellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	blue    = color.New(color.Bold, color.FgBlue).SprintFunc()
	cyan    = color.New(color.FgCyan).SprintFunc()
	magenta = color.New(color.FgMagenta).SprintFunc()
)

// Messages go to stderr so stdout stays free for command output and for the
// MCP stdio transport.
var (
	mu    sync.Mutex
	out   io.Writer = os.Stderr
	quiet bool
)

func init() {
	color.NoColor = color.NoColor || !term.IsTerminal(int(os.Stderr.Fd()))
}

// SetOutput redirects all messages to w and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	return prev
}

// SetQuiet silences every message except errors.
func SetQuiet(q bool) {
	mu.Lock()
	defer mu.Unlock()
	quiet = q
}

func printf(always bool, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if quiet && !always {
		return
	}
	fmt.Fprintf(out, format, args...)
}

// UI helper functions.

// Success prints a green success message.
func Success(msg string) {
	printf(false, "%s %s\n", green("✓"), msg)
}

// Error prints a red error message.
func Error(msg string) {
	printf(true, "%s %s\n", red("✗"), msg)
}

// Info prints a blue info message.
func Info(msg string) {
	printf(false, "%s %s\n", blue("i"), msg)
}

// Warning prints a yellow warning message.
func Warning(msg string) {
	printf(false, "%s %s\n", yellow("!"), msg)
}

// Header prints a bold header.
func Header(msg string) {
	printf(false, "\n%s\n", bold(msg))
}

// Detail prints an indented detail line.
func Detail(label, value string) {
	printf(false, "  %s %s\n", dim(label+":"), value)
}

// Step prints a numbered stage of a run.
func Step(current, total int, label string) {
	printf(false, "  %s %s\n", cyan(fmt.Sprintf("[%d/%d]", current, total)), label)
}

// DryRun marks a change that was computed but not written.
func DryRun(msg string) {
	printf(false, "%s %s\n", magenta("~"), msg)
}

// Divider prints a horizontal line.
func Divider() {
	printf(false, "%s\n", dim(strings.Repeat("─", 60)))
}

// Banner prints the tool name and version.
func Banner(version string) {
	printf(false, "\n  %s %s\n  %s\n\n", bold("wkinject"), dim("v"+version), dim("WatchKit companion target injector"))
}
