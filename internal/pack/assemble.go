package pack

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
)

const (
	frameworkName = "onnxruntime.framework"
	binaryName    = "onnxruntime"
	coremlHeader  = "coreml_provider_factory.h"
)

// requiredHeaders ship in every framework; a missing one fails the assembly.
var requiredHeaders = []string{
	"onnxruntime_c_api.h",
	"onnxruntime_cxx_api.h",
	"onnxruntime_cxx_inline.h",
}

// Bundle is an assembled per-platform framework directory.
type Bundle struct {
	Platform Platform
	Dir      string // the onnxruntime.framework directory
	CoreML   bool
	Version  string
}

// BinaryPath is the framework's executable binary.
func (b Bundle) BinaryPath() string { return filepath.Join(b.Dir, binaryName) }

// Assemble builds the framework directory for one platform from a combined
// library and the runtime's header source tree. The framework is recreated
// wholesale on every run; repeated runs over identical inputs produce
// byte-identical descriptors.
func Assemble(r Runner, lib CombinedLibrary, headerDir, outDir, version string) (Bundle, error) {
	p := lib.Platform
	fw := filepath.Join(outDir, frameworkName)
	if err := os.RemoveAll(fw); err != nil {
		return Bundle{}, err
	}
	headersDir := filepath.Join(fw, "Headers")
	modulesDir := filepath.Join(fw, "Modules")
	for _, dir := range []string{headersDir, modulesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Bundle{}, err
		}
	}

	binary := filepath.Join(fw, binaryName)
	if err := copyFile(lib.Path, binary); err != nil {
		return Bundle{}, err
	}
	// Re-stamping an already-stamped binary is a no-op, so this is safe on
	// libraries that came out of Combine with the install name set.
	if err := r.Run("install_name_tool", "-id", InstallName, binary); err != nil {
		return Bundle{}, err
	}

	for _, h := range requiredHeaders {
		src := filepath.Join(headerDir, h)
		if _, err := os.Stat(src); err != nil {
			return Bundle{}, &AssemblyError{Header: h, Dir: headerDir}
		}
		if err := copyFile(src, filepath.Join(headersDir, h)); err != nil {
			return Bundle{}, err
		}
	}

	coreml := lib.CoreML
	if coreml {
		src := filepath.Join(headerDir, coremlHeader)
		if _, err := os.Stat(src); err != nil {
			glog.Warningf("optional header %s not found under %s, framework ships without it", coremlHeader, headerDir)
			coreml = false
		} else if err := copyFile(src, filepath.Join(headersDir, coremlHeader)); err != nil {
			return Bundle{}, err
		}
	}

	modmap := moduleMapPlain
	if coreml {
		modmap = moduleMapCoreML
	}
	if err := os.WriteFile(filepath.Join(modulesDir, "module.modulemap"), []byte(modmap), 0o644); err != nil {
		return Bundle{}, err
	}
	plist := infoPlist(p, version, coreml)
	if err := os.WriteFile(filepath.Join(fw, "Info.plist"), []byte(plist), 0o644); err != nil {
		return Bundle{}, err
	}
	return Bundle{Platform: p, Dir: fw, CoreML: coreml, Version: version}, nil
}

// LoadBundle reopens a framework assembled by a previous run, recovering the
// variant and version recorded in its Info.plist.
func LoadBundle(p Platform, dir string) (Bundle, error) {
	data, err := os.ReadFile(filepath.Join(dir, "Info.plist"))
	if err != nil {
		return Bundle{}, fmt.Errorf("bundle %s: %w", p.Tag, err)
	}
	return Bundle{
		Platform: p,
		Dir:      dir,
		CoreML:   plistBool(string(data), "ORTCoreMLExecutionProvider"),
		Version:  plistString(string(data), "CFBundleShortVersionString"),
	}, nil
}

// Exactly two module map variants exist; the accelerated one adds the CoreML
// header and link directive. Any consuming build system depends on the exact
// key names here.
const moduleMapPlain = `framework module onnxruntime {
  header "onnxruntime_c_api.h"
  header "onnxruntime_cxx_api.h"
  header "onnxruntime_cxx_inline.h"
  link "c++"
  link framework "CoreFoundation"
  link framework "Foundation"
  export *
}
`

const moduleMapCoreML = `framework module onnxruntime {
  header "onnxruntime_c_api.h"
  header "onnxruntime_cxx_api.h"
  header "onnxruntime_cxx_inline.h"
  header "coreml_provider_factory.h"
  link "c++"
  link framework "CoreFoundation"
  link framework "Foundation"
  link framework "CoreML"
  export *
}
`

func infoPlist(p Platform, version string, coreml bool) string {
	coremlTag := "<false/>"
	if coreml {
		coremlTag = "<true/>"
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>CFBundleDevelopmentRegion</key>
	<string>en</string>
	<key>CFBundleExecutable</key>
	<string>onnxruntime</string>
	<key>CFBundleIdentifier</key>
	<string>com.onnxruntime.onnxruntime</string>
	<key>CFBundleInfoDictionaryVersion</key>
	<string>6.0</string>
	<key>CFBundleName</key>
	<string>onnxruntime</string>
	<key>CFBundlePackageType</key>
	<string>FMWK</string>
	<key>CFBundleShortVersionString</key>
	<string>%s</string>
	<key>CFBundleVersion</key>
	<string>%s</string>
	<key>CFBundleSupportedPlatforms</key>
	<array>
		<string>%s</string>
	</array>
	<key>MinimumOSVersion</key>
	<string>%s</string>
	<key>ORTCoreMLExecutionProvider</key>
	%s
</dict>
</plist>
`, version, version, p.PlistName, p.MinOSVersion, coremlTag)
}

// plistString pulls the <string> value following a <key> out of a plist
// written by infoPlist. Good enough for our own deterministic template.
func plistString(data, key string) string {
	i := strings.Index(data, "<key>"+key+"</key>")
	if i < 0 {
		return ""
	}
	rest := data[i:]
	j := strings.Index(rest, "<string>")
	if j < 0 {
		return ""
	}
	rest = rest[j+len("<string>"):]
	k := strings.Index(rest, "</string>")
	if k < 0 {
		return ""
	}
	return rest[:k]
}

func plistBool(data, key string) bool {
	i := strings.Index(data, "<key>"+key+"</key>")
	if i < 0 {
		return false
	}
	rest := data[i:]
	t := strings.Index(rest, "<true/>")
	f := strings.Index(rest, "<false/>")
	return t >= 0 && (f < 0 || t < f)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
