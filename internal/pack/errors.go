package pack

import (
	"fmt"
	"strings"
)

// NotFoundError reports that no candidate path contained a library artifact.
type NotFoundError struct {
	Config     Config
	Platform   string
	Candidates []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s library found for %s under any of: %s",
		e.Config, e.Platform, strings.Join(e.Candidates, ", "))
}

// CombineReason classifies Combine failures.
type CombineReason int

const (
	CombineNoInputs CombineReason = iota
	CombineLinkFailed
)

// CombineError reports a failed static-merge or link step. Output carries the
// external tool's diagnostic text unmodified.
type CombineError struct {
	Reason   CombineReason
	Platform string
	Output   string
	Err      error
}

func (e *CombineError) Error() string {
	if e.Reason == CombineNoInputs {
		return fmt.Sprintf("combine %s: no input archives", e.Platform)
	}
	msg := fmt.Sprintf("combine %s: link failed", e.Platform)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Output != "" {
		msg += "\n" + e.Output
	}
	return msg
}

func (e *CombineError) Unwrap() error { return e.Err }

// AssemblyError reports a required header missing from the header source tree.
type AssemblyError struct {
	Header string
	Dir    string
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assemble: required header %s not found under %s", e.Header, e.Dir)
}

// PackageReason classifies Package failures.
type PackageReason int

const (
	PackageMissingBundle PackageReason = iota
	PackageToolFailed
)

// PackageError reports a failed multi-platform packaging step.
type PackageError struct {
	Reason PackageReason
	Bundle string // platform tag of the missing bundle
	Output string
	Err    error
}

func (e *PackageError) Error() string {
	if e.Reason == PackageMissingBundle {
		return fmt.Sprintf("package: bundle binary missing for %s", e.Bundle)
	}
	msg := "package: xcodebuild failed"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Output != "" {
		msg += "\n" + e.Output
	}
	return msg
}

func (e *PackageError) Unwrap() error { return e.Err }
