// Package logger provides the dual console+file logger used across this
// module: leveled messages go to stdout and, once initialized, to a
// per-run log file under logs/.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger writes leveled messages to the console and, once Init has been
// called, to a log file. The zero value is usable and logs to the console
// only. A single Logger is safe for concurrent use; its console writes are
// serialized by an internal mutex so goroutines never interleave a line.
type Logger struct {
	mu      sync.Mutex
	file    *log.Logger
	logFile *os.File
	verbose bool
}

// New returns a console-only Logger. verbose enables Debug-level console
// output; Debug messages always reach the log file once one is open.
func New(verbose bool) *Logger {
	return &Logger{verbose: verbose}
}

// Init opens a timestamped log file under dir (default "logs") and starts
// mirroring every message to it in addition to the console.
func (l *Logger) Init(dir string) error {
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(dir, fmt.Sprintf("analysis_%s.log", timestamp))

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	l.mu.Lock()
	l.logFile = f
	l.file = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	l.mu.Unlock()

	fmt.Printf("Log file: %s\n", logPath)
	return nil
}

// Close releases the underlying log file, if one was opened.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.logFile != nil {
		_ = l.logFile.Close()
	}
}

// Writer exposes the underlying file writer, or io.Discard if no file log
// has been opened, for callers that want to pipe other output (e.g. a
// dependency's own logger) into the same file.
func (l *Logger) Writer() io.Writer {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.logFile == nil {
		return io.Discard
	}
	return l.logFile
}

func (l *Logger) write(level, format string, v []interface{}) {
	msg := fmt.Sprintf(format, v...)
	if len(msg) == 0 || msg[len(msg)-1] != '\n' {
		msg += "\n"
	}
	if l.file != nil {
		_ = l.file.Output(3, "["+level+"] "+msg)
	}
	fmt.Print("[" + level + "] " + msg)
}

// Info logs at info level, always to the console.
func (l *Logger) Info(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.write("INFO", format, v)
}

// Warn logs at warn level, always to the console.
func (l *Logger) Warn(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.write("WARN", format, v)
}

// Error logs at error level, always to the console.
func (l *Logger) Error(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.write("ERROR", format, v)
}

// Debug logs at debug level. It only reaches the console when verbose is
// set, but always reaches the log file (if one is open) so post-mortem
// investigation isn't limited by the flag used at run time.
func (l *Logger) Debug(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, v...)
	if len(msg) == 0 || msg[len(msg)-1] != '\n' {
		msg += "\n"
	}
	if l.file != nil {
		_ = l.file.Output(3, "[DEBUG] "+msg)
	}
	if l.verbose {
		fmt.Print("[DEBUG] " + msg)
	}
}
