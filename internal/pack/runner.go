package pack

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/glog"
	"golang.org/x/sys/execabs"
)

// Runner runs external tools. Every pipeline stage that shells out goes
// through a Runner so tests can substitute a recording stub.
type Runner interface {
	Run(name string, args ...string) error
}

// ToolError reports a failed external tool invocation together with the
// tool's own diagnostic output, unmodified.
type ToolError struct {
	Tool   string
	Output string
	Err    error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Tool, e.Err)
	if e.Output != "" {
		msg += "\n" + e.Output
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

// ExecRunner runs tools as blocking subprocesses, streaming their output to
// Stdout/Stderr while capturing it for error reporting.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a Runner wired to the process's stdout and stderr.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

func (r *ExecRunner) Run(name string, args ...string) error {
	glog.V(1).Infof("run: %s %s", name, strings.Join(args, " "))
	var buf bytes.Buffer
	cmd := execabs.Command(name, args...)
	cmd.Stdout = io.MultiWriter(r.Stdout, &buf)
	cmd.Stderr = io.MultiWriter(r.Stderr, &buf)
	if err := cmd.Run(); err != nil {
		return &ToolError{Tool: name, Output: buf.String(), Err: err}
	}
	return nil
}
