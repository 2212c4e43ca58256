package pack

import (
	"os"
	"testing"
)

type toolCall struct {
	name string
	args []string
}

// stubRunner records tool invocations instead of executing them. onRun, if
// set, emulates tool side effects or injects failures.
type stubRunner struct {
	calls []toolCall
	onRun func(name string, args []string) error
}

func (r *stubRunner) Run(name string, args ...string) error {
	r.calls = append(r.calls, toolCall{name: name, args: args})
	if r.onRun != nil {
		return r.onRun(name, args)
	}
	return nil
}

func (r *stubRunner) called(name string) bool {
	for _, c := range r.calls {
		if c.name == name {
			return true
		}
	}
	return false
}

// fakeTools emulates the external toolchain: libtool and the linker write
// their output file, xcodebuild creates its output directory.
func fakeTools(t *testing.T) func(name string, args []string) error {
	t.Helper()
	return func(name string, args []string) error {
		switch name {
		case "libtool", "xcrun":
			if out := argAfter(args, "-o"); out != "" {
				return os.WriteFile(out, []byte(name+" output"), 0o644)
			}
		case "xcodebuild":
			if out := argAfter(args, "-output"); out != "" {
				return os.MkdirAll(out, 0o755)
			}
		}
		return nil
	}
}

func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}
