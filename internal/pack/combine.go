package pack

import (
	"errors"
	"path/filepath"
)

// InstallName is the self-referential install path stamped into every
// combined library, resolved by consuming apps relative to their own bundle.
const InstallName = "@rpath/onnxruntime.framework/onnxruntime"

// CombinedLibrary is the single shared library produced for one platform.
// CoreML records the variant that was actually linked.
type CombinedLibrary struct {
	Path     string
	Platform Platform
	CoreML   bool
}

// Combine merges static archives into one and links the result into a single
// shared library for p. The merge is mechanical concatenation via libtool;
// the link force-loads the merged archive so every symbol stays exported.
func Combine(r Runner, p Platform, archives []string, workDir, outPath string, useCoreML bool) (CombinedLibrary, error) {
	if len(archives) == 0 {
		return CombinedLibrary{}, &CombineError{Reason: CombineNoInputs, Platform: p.Tag}
	}
	useCoreML = useCoreML && p.SupportsCoreML

	merged := filepath.Join(workDir, mergedArchiveName)
	mergeArgs := append([]string{"-static", "-o", merged}, archives...)
	if err := r.Run("libtool", mergeArgs...); err != nil {
		return CombinedLibrary{}, linkError(p, err)
	}

	linkArgs := []string{
		"-sdk", p.SDK, "clang++",
		"-dynamiclib",
		"-arch", p.Arch,
		p.versionMinFlag(),
		"-Wl,-force_load," + merged,
		"-framework", "CoreFoundation",
		"-framework", "Foundation",
	}
	if useCoreML {
		linkArgs = append(linkArgs, "-framework", "CoreML")
	}
	linkArgs = append(linkArgs,
		"-lc++",
		"-install_name", InstallName,
		"-o", outPath,
	)
	if err := r.Run("xcrun", linkArgs...); err != nil {
		return CombinedLibrary{}, linkError(p, err)
	}
	return CombinedLibrary{Path: outPath, Platform: p, CoreML: useCoreML}, nil
}

func linkError(p Platform, err error) *CombineError {
	e := &CombineError{Reason: CombineLinkFailed, Platform: p.Tag, Err: err}
	var te *ToolError
	if errors.As(err, &te) {
		e.Output = te.Output
	}
	return e
}
