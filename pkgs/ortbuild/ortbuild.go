// Package ortbuild wraps the ONNX Runtime build.sh configure-and-build
// workflow for Apple targets.
package ortbuild

import (
	"io"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/execabs"
)

// Build drives one build.sh invocation.
type Build struct {
	sourceDir    string
	buildDir     string
	config       string
	sysroot      string
	arch         string
	deployTarget string
	useCoreML    bool
	parallel     int
	extra        []string

	stdout io.Writer
	stderr io.Writer
}

// New returns a ready-to-use Build.
func New(sourceDir, buildDir string) *Build {
	return &Build{
		sourceDir: sourceDir,
		buildDir:  buildDir,
		arch:      "arm64",
		stdout:    os.Stdout,
		stderr:    os.Stderr,
	}
}

// Config sets the build configuration (e.g. "Release", "Debug").
func (b *Build) Config(name string) { b.config = name }

// Sysroot sets the Apple SDK to build against (e.g. "iphoneos").
func (b *Build) Sysroot(sdk string) { b.sysroot = sdk }

// Arch overrides the target architecture.
func (b *Build) Arch(arch string) { b.arch = arch }

// DeployTarget sets the minimum OS version.
func (b *Build) DeployTarget(version string) { b.deployTarget = version }

// CoreML toggles the CoreML execution provider.
func (b *Build) CoreML(on bool) { b.useCoreML = on }

// Parallel sets the build concurrency; 0 lets the tool decide.
func (b *Build) Parallel(n int) { b.parallel = n }

// ExtraArgs appends additional raw build.sh arguments.
func (b *Build) ExtraArgs(args ...string) { b.extra = append(b.extra, args...) }

// Stdout overrides where build output goes.
func (b *Build) Stdout(w io.Writer) { b.stdout = w }

// Stderr overrides where build diagnostics go.
func (b *Build) Stderr(w io.Writer) { b.stderr = w }

// Args assembles the full build.sh argument list.
func (b *Build) Args() []string {
	args := []string{
		"--build_dir", b.buildDir,
		"--build_apple_framework",
		"--skip_tests",
		"--use_xcode",
	}
	if b.config != "" {
		args = append(args, "--config", b.config)
	}
	if b.sysroot != "" {
		args = append(args, "--apple_sysroot", b.sysroot)
		if b.sysroot == "iphoneos" || b.sysroot == "iphonesimulator" {
			args = append(args, "--ios")
		}
	}
	if b.arch != "" {
		args = append(args, "--osx_arch", b.arch)
	}
	if b.deployTarget != "" {
		args = append(args, "--apple_deploy_target", b.deployTarget)
	}
	if b.useCoreML {
		args = append(args, "--use_coreml")
	}
	if b.parallel > 0 {
		args = append(args, "--parallel", strconv.Itoa(b.parallel))
	}
	args = append(args, b.extra...)
	return args
}

// Run invokes build.sh from the source tree and blocks until it finishes.
func (b *Build) Run() error {
	script := filepath.Join(b.sourceDir, "build.sh")
	cmd := execabs.Command(script, b.Args()...)
	cmd.Dir = b.sourceDir
	cmd.Stdout = b.stdout
	cmd.Stderr = b.stderr
	return cmd.Run()
}
