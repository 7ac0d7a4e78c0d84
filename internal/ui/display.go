// Package ui renders console output for the analyzer: a status banner, a
// progress bar during artifact loading, and leveled log lines that keep a
// transient status line from being interleaved with other output.
package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	mu sync.Mutex

	infoColor     = color.New(color.FgBlue)
	successColor  = color.New(color.FgGreen)
	errorColor    = color.New(color.FgRed)
	spinnerColor  = color.New(color.FgCyan)
	patternColors = map[string]*color.Color{
		"critical": color.New(color.FgRed, color.Bold),
		"high":     color.New(color.FgRed),
		"medium":   color.New(color.FgYellow),
		"low":      color.New(color.FgGreen),
	}
)

// NoColor disables all color output, e.g. when --no-color is set or stdout
// isn't a terminal.
func NoColor(disabled bool) {
	color.NoColor = disabled
}

func PrintBanner(version string) {
	banner := `
__      __
\ \    / /
 \ \  / /__  ___ _ __   ___ _ __ __ _
  \ \/ / _ \/ __| '_ \ / _ \ '__/ _` + "`" + ` |
   \  /  __/\__ \ |_) |  __/ | | (_| |
    \/ \___||___/ .__/ \___|_|  \__,_|
                | |
                |_|
`
	color.New(color.FgCyan).Println(banner)
	color.New(color.FgHiBlack).Printf("  v%s - Solidity reentrancy analyzer\n\n", version)
}

func clearLine() {
	fmt.Print("\r\033[K")
}

// UpdateStatus overwrites the current transient status line, used while
// artifacts are being loaded and classified.
func UpdateStatus(format string, a ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	msg := fmt.Sprintf(format, a...)
	clearLine()
	if len(msg) > 100 {
		msg = msg[:97] + "..."
	}
	spinnerColor.Print("⚡ " + msg)
}

func LogSuccess(format string, a ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	clearLine()
	successColor.Printf("[OK] "+format+"\n", a...)
}

// LogPattern announces a detected reentrancy pattern, colored by severity.
func LogPattern(function, classification, severity string) {
	mu.Lock()
	defer mu.Unlock()
	clearLine()

	c, ok := patternColors[severity]
	if !ok {
		c = color.New(color.FgWhite)
	}
	c.Printf("[%s] %s in %s\n", strings.ToUpper(severity), classification, function)
}

func LogInfo(format string, a ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	clearLine()
	infoColor.Printf("[INFO] "+format+"\n", a...)
}

func LogError(format string, a ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	clearLine()
	errorColor.Printf("[ERROR] "+format+"\n", a...)
}

// StartSpinner renders an indeterminate spinner with msg until the returned
// channel is closed or sent a value.
func StartSpinner(msg string) chan bool {
	stop := make(chan bool)
	go func() {
		frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		i := 0
		for {
			select {
			case <-stop:
				return
			default:
				mu.Lock()
				clearLine()
				spinnerColor.Printf("%s %s", frames[i%len(frames)], msg)
				mu.Unlock()
				time.Sleep(100 * time.Millisecond)
				i++
			}
		}
	}()
	return stop
}

// PrintSummary reports end-of-run totals: contracts and functions analyzed,
// the total number of patterns found, and wall-clock duration.
func PrintSummary(contracts, functions, patterns int, duration time.Duration) {
	fmt.Println()
	color.New(color.FgHiBlack).Println(strings.Repeat("─", 50))
	fmt.Printf("Analysis completed in %s\n", duration)
	fmt.Printf("Contracts: %d | Functions: %d | Patterns found: %d\n", contracts, functions, patterns)
	color.New(color.FgHiBlack).Println(strings.Repeat("─", 50))
}
