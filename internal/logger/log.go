// Package logger prints runner and CLI messages, optionally colored.
package logger

import (
	"fmt"
	"strings"

	"github.com/logrusorgru/aurora/v3"
)

// Printer is satisfied by *log.Logger.
type Printer interface {
	Output(calldepth int, s string) error
}

// Logger reports what the migration runner is doing.
type Logger interface {
	Successf(format string, args ...any)
	Debugf(format string, args ...any)
	Error(err error)
	SQL(query string, args ...any)
}

var (
	_ Logger = (*ColoredLogger)(nil)
	_ Logger = (*BWLogger)(nil)
	_ Logger = NullLogger{}
)

// New returns a ColoredLogger or a BWLogger. sql enables statement echo,
// debug enables Debugf output.
func New(p Printer, color, sql, debug bool) Logger {
	if color {
		return NewColorLogger(p, sql, debug)
	}

	return NewBWLogger(p, sql, debug)
}

// ColoredLogger writes ANSI colored lines.
type ColoredLogger struct {
	printer Printer
	debug   bool
	sql     bool
}

// NewColorLogger creates a ColoredLogger.
func NewColorLogger(p Printer, sql, debug bool) *ColoredLogger {
	return &ColoredLogger{printer: p, debug: debug, sql: sql}
}

func (cl *ColoredLogger) Debugf(format string, args ...any) {
	if cl.debug {
		_ = cl.printer.Output(2, aurora.Yellow(debugLine(format, args...)).String())
	}
}

func (cl *ColoredLogger) Successf(format string, args ...any) {
	_ = cl.printer.Output(2, aurora.Green(successLine(format, args...)).String())
}

func (cl *ColoredLogger) Error(err error) {
	_ = cl.printer.Output(2, aurora.Red(errorLine(err)).String())
}

func (cl *ColoredLogger) SQL(query string, args ...any) {
	if cl.sql {
		_ = cl.printer.Output(2, aurora.Gray(15, sqlLine(query, args...)).String())
	}
}

// BWLogger writes plain lines.
type BWLogger struct {
	printer Printer
	debug   bool
	sql     bool
}

// NewBWLogger creates a BWLogger.
func NewBWLogger(p Printer, sql, debug bool) *BWLogger {
	return &BWLogger{printer: p, debug: debug, sql: sql}
}

func (bwl *BWLogger) Debugf(format string, args ...any) {
	if bwl.debug {
		_ = bwl.printer.Output(2, debugLine(format, args...))
	}
}

func (bwl *BWLogger) Successf(format string, args ...any) {
	_ = bwl.printer.Output(2, successLine(format, args...))
}

func (bwl *BWLogger) Error(err error) {
	_ = bwl.printer.Output(2, errorLine(err))
}

func (bwl *BWLogger) SQL(query string, args ...any) {
	if bwl.sql {
		_ = bwl.printer.Output(2, sqlLine(query, args...))
	}
}

func debugLine(format string, args ...any) string {
	return fmt.Sprintf("persondb debug: "+format, args...)
}

func successLine(format string, args ...any) string {
	return fmt.Sprintf("persondb: "+format, args...)
}

func errorLine(err error) string {
	return "persondb error: " + err.Error()
}

func sqlLine(query string, args ...any) string {
	var b strings.Builder

	b.WriteString("persondb sql: ")
	b.WriteString(query)

	if len(args) == 0 {
		return b.String()
	}

	b.WriteString("\nquery parameters: ")

	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}

		fmt.Fprintf(&b, "{%#v}", arg)
	}

	return b.String()
}
