package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

const clearSeq = "\033[2K\r"

// ProgressBar tracks progress through a known number of artifact files
// while loading, printing a redrawn bar line plus a running pattern count.
type ProgressBar struct {
	total       int
	current     int
	patternHits int
	startTime   time.Time
	description string
	mu          sync.Mutex
	width       int
}

func NewProgressBar(total int, description string) *ProgressBar {
	return &ProgressBar{
		total:       total,
		startTime:   time.Now(),
		description: description,
		width:       40,
	}
}

func (pb *ProgressBar) Increment() {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.current++
	pb.render()
}

// AddPattern records that a reentrancy pattern was found; the next render
// picks up the updated count.
func (pb *ProgressBar) AddPattern() {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.patternHits++
}

func (pb *ProgressBar) PrintMsg(msg string) {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	fmt.Print(clearSeq)
	fmt.Println(msg)
	pb.render()
}

func (pb *ProgressBar) Finish() {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.current = pb.total
	fmt.Print(clearSeq)
	pb.render()
	fmt.Println()
}

func (pb *ProgressBar) render() {
	percent := float64(pb.current) / float64(pb.total)
	if percent > 1.0 {
		percent = 1.0
	}

	filled := int(float64(pb.width) * percent)
	bar := strings.Repeat("=", filled)
	if filled < pb.width {
		bar += ">" + strings.Repeat(".", pb.width-filled-1)
	} else {
		bar = strings.Repeat("=", pb.width)
	}

	elapsed := time.Since(pb.startTime)
	rate := float64(pb.current) / elapsed.Seconds()
	remaining := time.Duration(0)
	if rate > 0 {
		remaining = time.Duration(float64(pb.total-pb.current)/rate) * time.Second
	}
	etaStr := fmt.Sprintf("%02dm%02ds", int(remaining.Minutes()), int(remaining.Seconds())%60)

	barColor := color.New(color.FgCyan)
	if percent >= 1.0 {
		barColor = color.New(color.FgGreen)
	}
	patternColor := color.New(color.FgGreen)
	if pb.patternHits > 0 {
		patternColor = color.New(color.FgRed)
	}

	fmt.Print(clearSeq)
	fmt.Printf("%s [", pb.description)
	barColor.Print(bar)
	fmt.Printf("] %.0f%% | %d/%d | ETA: %s | Patterns: ", percent*100, pb.current, pb.total, etaStr)
	patternColor.Printf("%d", pb.patternHits)
	fmt.Println()
}

// FormatPatternMsg renders a one-line summary of the patterns found for a
// single source file, suitable for PrintMsg during a multi-file run.
func FormatPatternMsg(sourceFile string, patterns []string) string {
	return fmt.Sprintf(" Found %d pattern(s) in %s: %s",
		len(patterns), sourceFile, strings.Join(patterns, ", "))
}
