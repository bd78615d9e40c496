package preflight

import (
	"fmt"
	"io"
)

const (
	markOk   = "✅"
	markInfo = "ℹ️ "
	markWarn = "⚠️ "
	markFail = "❌"
	markRun  = "🚀"
)

// Report writes the progress lines meant for the user. Failures go to the
// error stream, everything else to the output stream.
type Report struct {
	out io.Writer
	err io.Writer
}

func NewReport(out, err io.Writer) *Report {
	if out == nil {
		out = io.Discard
	}
	if err == nil {
		err = io.Discard
	}
	return &Report{
		out: out,
		err: err,
	}
}

func (r *Report) Ok(format string, args ...any) {
	r.print(r.out, markOk, format, args...)
}

func (r *Report) Info(format string, args ...any) {
	r.print(r.out, markInfo, format, args...)
}

func (r *Report) Warn(format string, args ...any) {
	r.print(r.out, markWarn, format, args...)
}

func (r *Report) Run(format string, args ...any) {
	r.print(r.out, markRun, format, args...)
}

func (r *Report) Fail(format string, args ...any) {
	r.print(r.err, markFail, format, args...)
}

func (r *Report) print(w io.Writer, mark, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", mark, fmt.Sprintf(format, args...))
}
