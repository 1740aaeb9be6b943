package colors

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) record(level, msg string, args ...any) {
	r.lines = append(r.lines, fmt.Sprint(level, ":", msg, args))
}

func (r *recordingLogger) Debug(msg string, args ...any) { r.record("debug", msg, args...) }
func (r *recordingLogger) Info(msg string, args ...any)  { r.record("info", msg, args...) }
func (r *recordingLogger) Warn(msg string, args ...any)  { r.record("warn", msg, args...) }
func (r *recordingLogger) Error(msg string, args ...any) { r.record("error", msg, args...) }

func capture(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	restore := SetOutput(&out, &errOut)
	t.Cleanup(restore)
	return &out, &errOut
}

func TestConsoleOutput(t *testing.T) {
	tests := []struct {
		name     string
		print    func(...string)
		toStderr bool
		want     []string
	}{
		{"error", Error, true, []string{"Error:", "something went wrong", Red}},
		{"warning", Warning, true, []string{"Warning:", "something went wrong", Yellow}},
		{"success", Success, false, []string{checkmark, "something went wrong", Green}},
		{"info", Info, false, []string{"something went wrong", Blue}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut := capture(t)
			tt.print("something", "went wrong")

			got, other := out.String(), errOut.String()
			if tt.toStderr {
				got, other = other, got
			}
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
			assert.Empty(t, other)
		})
	}
}

func TestDebugRespectsFlag(t *testing.T) {
	_, errOut := capture(t)
	SetDebug(false)
	t.Cleanup(func() { SetDebug(false) })

	Debug("hidden")
	assert.Empty(t, errOut.String())

	SetDebug(true)
	Debug("shown")
	assert.Contains(t, errOut.String(), "Debug:")
	assert.Contains(t, errOut.String(), "shown")
}

func TestQuietSuppressesStdoutOnly(t *testing.T) {
	out, errOut := capture(t)
	SetQuiet(true)
	t.Cleanup(func() { SetQuiet(false) })

	Info("info")
	Success("done")
	Warning("careful")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "careful")
}

func TestMirrorsToLogger(t *testing.T) {
	capture(t)
	rec := &recordingLogger{}
	SetLogger(rec)
	t.Cleanup(func() { SetLogger(nil) })

	Error("e")
	Warning("w")
	Success("s")

	assert.Equal(t, []string{"error:e[]", "warn:w[]", "info:s[type success]"}, rec.lines)
}

func TestPrintln(t *testing.T) {
	out, _ := capture(t)
	Println("plain line")
	assert.Equal(t, "plain line\n", out.String())
}
