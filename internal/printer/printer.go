// Package printer writes parcel's user-facing command output. Colors are
// only used when the destination is a terminal.
package printer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hay-kot/criterio"
	"golang.org/x/term"

	"github.com/hay-kot/parcel/internal/core/storage"
)

// ANSI escapes, Tokyo Night palette.
const (
	ColorReset     = "\033[0m"
	ColorRed       = "\033[38;2;215;95;107m"
	ColorGreen     = "\033[38;2;158;206;106m"
	ColorYellow    = "\033[38;2;224;175;104m"
	ColorGray      = "\033[38;2;86;95;137m"
	ColorBold      = "\033[1m"
	ColorUnderline = "\033[4m"
)

const (
	Check = "✔"
	Cross = "✘"
	Dot   = "•"
	Arrow = "→"
)

type ctxKey struct{}

// Printer writes styled lines to one writer.
type Printer struct {
	writer io.Writer
	color  bool
}

// New creates a Printer for w. Colors are enabled when w is a terminal
// and NO_COLOR is unset.
func New(w io.Writer) *Printer {
	return &Printer{writer: w, color: colorEnabled(w)}
}

func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// NewContext returns a context carrying p.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the printer carried by ctx, or one writing to stderr.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stderr)
}

// FatalError prints err in a box. It does not exit; the caller sets the
// exit code. Config validation errors list one field per line, and
// storage failures carry a hint on how to recover.
func (p *Printer) FatalError(err error) {
	if err == nil {
		return
	}

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		p.printValidationErrors(err, fieldErrs)
		return
	}

	title, hint := "Error", ""
	switch {
	case errors.Is(err, storage.ErrWrite):
		title, hint = "Storage Error", "changes are kept for this run only; check that the data directory is writable"
	case errors.Is(err, storage.ErrRead):
		title, hint = "Storage Error", "run 'parcel doctor' to find the unreadable file"
	}

	bar := p.colorize(ColorRed, "│")
	p.line(p.colorize(ColorRed, "╭ " + title))
	p.line(bar + " " + p.colorize(ColorGray, err.Error()))
	if hint != "" {
		p.line(bar + " " + p.colorize(ColorYellow, Arrow+" "+hint))
	}
	p.line(p.colorize(ColorRed, "╵"))
}

// printValidationErrors prints the wrapping context of err followed by
// each field error.
func (p *Printer) printValidationErrors(err error, fieldErrs criterio.FieldErrors) {
	errStr := err.Error()

	prefix := ""
	if idx := strings.Index(errStr, fieldErrs.Error()); idx > 0 {
		prefix = strings.TrimSuffix(errStr[:idx], ": ")
	}

	bar := p.colorize(ColorRed, "│")
	p.line(p.colorize(ColorRed, "╭ Validation Error"))
	if prefix != "" {
		p.line(bar + " " + p.colorize(ColorGray, prefix))
		p.line(bar)
	}

	for _, fe := range fieldErrs {
		line := bar + " " + p.colorize(ColorRed, Cross) + " "
		if fe.Field != "" {
			line += p.colorize(ColorGray, fe.Field+": ")
		}
		p.line(line + fe.Err.Error())
	}

	p.line(p.colorize(ColorRed, "╵"))
}

// Errorf prints a red failure line.
func (p *Printer) Errorf(format string, args ...any) {
	p.line(p.colorize(ColorRed, Cross+" "+fmt.Sprintf(format, args...)))
}

// Successf prints a green confirmation line.
func (p *Printer) Successf(format string, args ...any) {
	p.line(p.colorize(ColorGreen, Check+" "+fmt.Sprintf(format, args...)))
}

// Infof prints a gray note.
func (p *Printer) Infof(format string, args ...any) {
	p.line(p.colorize(ColorGray, Dot+" "+fmt.Sprintf(format, args...)))
}

// Warnf prints a yellow note.
func (p *Printer) Warnf(format string, args ...any) {
	p.line(p.colorize(ColorYellow, Dot+" "+fmt.Sprintf(format, args...)))
}

// Printf prints an unstyled line.
func (p *Printer) Printf(format string, args ...any) {
	p.line(fmt.Sprintf(format, args...))
}

// Section prints a bold, underlined header.
func (p *Printer) Section(title string) {
	if !p.color {
		p.line(title)
		return
	}
	p.line(ColorBold + ColorUnderline + title + ColorReset)
}

// CheckItem prints a passing item with a green checkmark.
func (p *Printer) CheckItem(label, detail string) {
	p.item(ColorGreen, Check, label, detail, "")
}

// WarnItem prints a warning item with a yellow dot and an optional hint
// on how to repair it.
func (p *Printer) WarnItem(label, detail, hint string) {
	p.item(ColorYellow, Dot, label, detail, hint)
}

// FailItem prints a failing item with a red cross and an optional hint
// on how to repair it.
func (p *Printer) FailItem(label, detail, hint string) {
	p.item(ColorRed, Cross, label, detail, hint)
}

func (p *Printer) item(color, symbol, label, detail, hint string) {
	line := "  " + p.colorize(color, symbol) + " " + label
	if detail != "" {
		line += ": " + detail
	}
	p.line(line)
	if hint != "" {
		p.line("    " + p.colorize(ColorGray, Arrow+" "+hint))
	}
}

func (p *Printer) colorize(color, text string) string {
	if !p.color {
		return text
	}
	return color + text + ColorReset
}

func (p *Printer) line(s string) {
	_, _ = io.WriteString(p.writer, s+"\n")
}
