package output

import (
	"fmt"
	"io"
	"os"
)

// Splog provides structured logging and output
type Splog struct {
	writer  io.Writer
	verbose bool
}

// NewSplog creates a new splog instance
func NewSplog() *Splog {
	return &Splog{writer: os.Stdout}
}

// NewSplogWriter creates a splog writing to w
func NewSplogWriter(w io.Writer) *Splog {
	return &Splog{writer: w}
}

// SetVerbose enables debug output
func (s *Splog) SetVerbose(verbose bool) {
	s.verbose = verbose
}

// Info writes an info message
func (s *Splog) Info(format string, args ...interface{}) {
	fmt.Fprintf(s.writer, format+"\n", args...)
}

// Warn writes a warning message
func (s *Splog) Warn(format string, args ...interface{}) {
	fmt.Fprintf(s.writer, WarnStyle("warning: ")+format+"\n", args...)
}

// Debug writes a debug message, shown only in verbose mode
func (s *Splog) Debug(format string, args ...interface{}) {
	if !s.verbose {
		return
	}
	fmt.Fprintf(s.writer, format+"\n", args...)
}

// Tip writes a tip message
func (s *Splog) Tip(format string, args ...interface{}) {
	fmt.Fprintf(s.writer, TipStyle("tip: ")+format+"\n", args...)
}

// Progress writes a counted progress message
func (s *Splog) Progress(task string, current, total int) {
	s.Debug("%s [%d/%d]", task, current, total)
}

// Newline writes a newline
func (s *Splog) Newline() {
	fmt.Fprintln(s.writer)
}
