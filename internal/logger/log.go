package logger

import (
	"fmt"

	"github.com/logrusorgru/aurora/v3"
)

type Printer interface {
	Output(calldepth int, s string) error
}

type Logger interface {
	Successf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Patchf(format string, args ...interface{})
	Error(err error)
}

type ColoredLogger struct {
	printer Printer
	debug   bool
}

type BWLogger struct {
	printer Printer
	debug   bool
}

var _ Logger = (*ColoredLogger)(nil)
var _ Logger = (*BWLogger)(nil)

func NewColorLogger(p Printer, debug bool) *ColoredLogger {
	return &ColoredLogger{
		printer: p,
		debug:   debug,
	}
}

func NewBWLogger(p Printer, debug bool) *BWLogger {
	return &BWLogger{
		printer: p,
		debug:   debug,
	}
}

func (cl *ColoredLogger) Debugf(format string, args ...interface{}) {
	if cl.debug {
		msg := fmt.Sprintf("\nGrebe debug: "+format, args...)
		_ = cl.printer.Output(2, aurora.Yellow(msg).String())
	}
}

func (cl *ColoredLogger) Successf(format string, args ...interface{}) {
	msg := fmt.Sprintf("\nGrebe: "+format, args...)
	_ = cl.printer.Output(2, aurora.Green(msg).String())
}

func (cl *ColoredLogger) Patchf(format string, args ...interface{}) {
	msg := fmt.Sprintf("\nGrebe applying: "+format, args...)
	_ = cl.printer.Output(2, aurora.Gray(15, msg).String())
}

func (cl *ColoredLogger) Error(err error) {
	msg := fmt.Sprintf("\nGrebe error: %s", err.Error())
	_ = cl.printer.Output(2, aurora.Red(msg).String())
}

func (bwl *BWLogger) Debugf(format string, args ...interface{}) {
	if bwl.debug {
		msg := fmt.Sprintf("\nGrebe debug: "+format, args...)
		_ = bwl.printer.Output(2, msg)
	}
}

func (bwl *BWLogger) Successf(format string, args ...interface{}) {
	msg := fmt.Sprintf("\nGrebe: "+format, args...)
	_ = bwl.printer.Output(2, msg)
}

func (bwl *BWLogger) Patchf(format string, args ...interface{}) {
	msg := fmt.Sprintf("\nGrebe applying: "+format, args...)
	_ = bwl.printer.Output(2, msg)
}

func (bwl *BWLogger) Error(err error) {
	msg := fmt.Sprintf("\nGrebe error: %s", err.Error())
	_ = bwl.printer.Output(2, msg)
}
