package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/tj/go-spin"
)

type CLILogger struct {
	w             io.Writer
	spinnerStopCh chan bool
	spinnerMsg    string
	spinnerArgs   []interface{}
	isSilent      bool
}

func NewCLILogger(w io.Writer) *CLILogger {
	return &CLILogger{w: w}
}

func (l *CLILogger) Silence() {
	if l == nil {
		return
	}
	l.isSilent = true
}

func (l *CLILogger) Info(msg string, args ...interface{}) {
	if l == nil || l.isSilent {
		return
	}

	fmt.Fprintf(l.w, "    ")
	fmt.Fprintln(l.w, fmt.Sprintf(msg, args...))
	fmt.Fprintln(l.w, "")
}

func (l *CLILogger) ActionWithoutSpinner(msg string, args ...interface{}) {
	if l == nil || l.isSilent {
		return
	}

	if msg == "" {
		fmt.Fprintln(l.w, "")
		return
	}

	fmt.Fprintf(l.w, "  • ")
	fmt.Fprintln(l.w, fmt.Sprintf(msg, args...))
}

func (l *CLILogger) ChildActionWithoutSpinner(msg string, args ...interface{}) {
	if l == nil || l.isSilent {
		return
	}

	fmt.Fprintf(l.w, "    • ")
	fmt.Fprintln(l.w, fmt.Sprintf(msg, args...))
}

func (l *CLILogger) ActionWithSpinner(msg string, args ...interface{}) {
	if l == nil || l.isSilent {
		return
	}

	fmt.Fprintf(l.w, "  • ")
	fmt.Fprintf(l.w, msg, args...)

	if isatty.IsTerminal(os.Stdout.Fd()) {
		s := spin.New()

		fmt.Fprintf(l.w, " %s", s.Next())

		l.spinnerStopCh = make(chan bool)
		l.spinnerMsg = msg
		l.spinnerArgs = args

		go func() {
			for {
				select {
				case <-l.spinnerStopCh:
					return
				case <-time.After(time.Millisecond * 100):
					fmt.Fprintf(l.w, "\r")
					fmt.Fprintf(l.w, "  • ")
					fmt.Fprintf(l.w, msg, args...)
					fmt.Fprintf(l.w, " %s", s.Next())
				}
			}
		}()
	} else {
		fmt.Fprintln(l.w, "")
	}
}

func (l *CLILogger) FinishSpinner() {
	if l == nil || l.isSilent {
		return
	}

	green := color.New(color.FgHiGreen)

	fmt.Fprintf(l.w, "\r")
	fmt.Fprintf(l.w, "  • ")
	fmt.Fprintf(l.w, l.spinnerMsg, l.spinnerArgs...)
	green.Fprintf(l.w, " ✓")
	fmt.Fprintf(l.w, "  \n")

	if isatty.IsTerminal(os.Stdout.Fd()) {
		l.spinnerStopCh <- true
		close(l.spinnerStopCh)
	}
}

func (l *CLILogger) FinishSpinnerWithError() {
	if l == nil || l.isSilent {
		return
	}

	red := color.New(color.FgHiRed)

	fmt.Fprintf(l.w, "\r")
	fmt.Fprintf(l.w, "  • ")
	fmt.Fprintf(l.w, l.spinnerMsg, l.spinnerArgs...)
	red.Fprintf(l.w, " ✗")
	fmt.Fprintf(l.w, "  \n")

	if isatty.IsTerminal(os.Stdout.Fd()) {
		l.spinnerStopCh <- true
		close(l.spinnerStopCh)
	}
}

func (l *CLILogger) Warning(msg string, args ...interface{}) {
	if l == nil || l.isSilent {
		return
	}

	c := color.New(color.FgYellow)
	c.Fprintf(l.w, "  • ")
	c.Fprintln(l.w, fmt.Sprintf(msg, args...))
}

func (l *CLILogger) Error(err error) {
	if l == nil || l.isSilent {
		return
	}

	c := color.New(color.FgHiRed)
	c.Fprintf(l.w, "  • ")
	c.Fprintln(l.w, fmt.Sprintf("%v", err))
}
