// Package pack implements the build-artifact discovery and packaging pipeline
// that turns per-platform ONNX Runtime build trees into a single
// onnxruntime.xcframework distribution.
package pack

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
)

// Config selects the native build variant and the output directory naming.
// It is immutable once chosen for a run.
type Config string

const (
	Release        Config = "Release"
	Debug          Config = "Debug"
	RelWithDebInfo Config = "RelWithDebInfo"
	MinSizeRel     Config = "MinSizeRel"
)

// Configs lists every supported build configuration.
func Configs() []Config {
	return []Config{Release, Debug, RelWithDebInfo, MinSizeRel}
}

// ParseConfig validates a configuration name from the command line.
func ParseConfig(name string) (Config, error) {
	for _, c := range Configs() {
		if name == string(c) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown build configuration %q (expected one of Release, Debug, RelWithDebInfo, MinSizeRel)", name)
}

func (c Config) String() string { return string(c) }

// Platform describes one Apple build target.
type Platform struct {
	Tag            string // output directory key: "iphoneos", "iphonesimulator", "macosx"
	SDK            string // SDK name passed to xcrun -sdk
	Arch           string
	MinOSVersion   string
	PlistName      string // CFBundleSupportedPlatforms entry
	SupportsCoreML bool
}

// Platforms returns the fixed set of targets, in packaging order.
func Platforms() []Platform {
	return []Platform{
		{Tag: "iphoneos", SDK: "iphoneos", Arch: "arm64", MinOSVersion: "13.0", PlistName: "iPhoneOS", SupportsCoreML: true},
		{Tag: "iphonesimulator", SDK: "iphonesimulator", Arch: "arm64", MinOSVersion: "13.0", PlistName: "iPhoneSimulator", SupportsCoreML: false},
		{Tag: "macosx", SDK: "macosx", Arch: "arm64", MinOSVersion: "11.0", PlistName: "MacOSX", SupportsCoreML: true},
	}
}

// versionMinFlag returns the clang deployment-target flag for p.
func (p Platform) versionMinFlag() string {
	switch p.Tag {
	case "iphoneos":
		return "-miphoneos-version-min=" + p.MinOSVersion
	case "iphonesimulator":
		return "-mios-simulator-version-min=" + p.MinOSVersion
	default:
		return "-mmacosx-version-min=" + p.MinOSVersion
	}
}

// Layout fixes where every output of a run lives. All paths are sub-keyed by
// the configuration name, then by platform tag, with a well-known subpath for
// the final multi-platform artifact.
type Layout struct {
	Root   string
	Config Config
}

// BuildDir is the per-platform native build tree.
func (l Layout) BuildDir(p Platform) string {
	return filepath.Join(l.Root, "build", string(l.Config), p.Tag)
}

// BundleDir holds the combined library and the assembled framework for p.
func (l Layout) BundleDir(p Platform) string {
	return filepath.Join(l.BuildDir(p), "out")
}

// FrameworkDir is the assembled onnxruntime.framework for p.
func (l Layout) FrameworkDir(p Platform) string {
	return filepath.Join(l.BundleDir(p), frameworkName)
}

// OutDir holds the final multi-platform artifact.
func (l Layout) OutDir() string {
	return filepath.Join(l.Root, "build", string(l.Config), "framework_out")
}

// XCFrameworkPath is the fixed location of the distribution artifact.
func (l Layout) XCFrameworkPath() string {
	return filepath.Join(l.OutDir(), "onnxruntime.xcframework")
}

// InfoJSONPath is the packager's machine-readable report.
func (l Layout) InfoJSONPath() string {
	return filepath.Join(l.OutDir(), "framework_info.json")
}

// CandidatePaths returns the locator search list for p, most likely first.
// Paths are slash-separated and relative to the layout root so that the
// locator can run over any fs.FS rooted there.
func (l Layout) CandidatePaths(p Platform) []string {
	base := path.Join("build", string(l.Config), p.Tag)
	return []string{
		path.Join(base, string(l.Config)+"-"+p.SDK),
		path.Join(base, string(l.Config)),
		base,
	}
}

// ReadVersion reads the runtime version from the VERSION_NUMBER file at the
// root of the ONNX Runtime source tree.
func ReadVersion(sourceDir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(sourceDir, "VERSION_NUMBER"))
	if err != nil {
		return "", err
	}
	v := strings.TrimSpace(string(data))
	if !semver.IsValid("v" + v) {
		return "", fmt.Errorf("invalid runtime version %q in VERSION_NUMBER", v)
	}
	return v, nil
}
