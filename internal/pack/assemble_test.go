package pack

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeHeaders(t *testing.T, dir string, withCoreML bool) {
	t.Helper()
	names := append([]string{}, requiredHeaders...)
	if withCoreML {
		names = append(names, coremlHeader)
	}
	for _, h := range names {
		if err := os.WriteFile(filepath.Join(dir, h), []byte("// "+h+"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func writeLibrary(t *testing.T, dir string) CombinedLibrary {
	t.Helper()
	path := filepath.Join(dir, "libonnxruntime.dylib")
	if err := os.WriteFile(path, []byte("binary"), 0o755); err != nil {
		t.Fatal(err)
	}
	return CombinedLibrary{Path: path, Platform: Platforms()[0], CoreML: true}
}

func TestAssembleLayout(t *testing.T) {
	headerDir := t.TempDir()
	outDir := t.TempDir()
	writeHeaders(t, headerDir, true)
	lib := writeLibrary(t, t.TempDir())
	r := &stubRunner{}

	b, err := Assemble(r, lib, headerDir, outDir, "1.22.0")
	if err != nil {
		t.Fatal(err)
	}
	for _, rel := range []string{
		"onnxruntime",
		"Info.plist",
		"Modules/module.modulemap",
		"Headers/onnxruntime_c_api.h",
		"Headers/onnxruntime_cxx_api.h",
		"Headers/onnxruntime_cxx_inline.h",
		"Headers/coreml_provider_factory.h",
	} {
		if _, err := os.Stat(filepath.Join(b.Dir, rel)); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}
	if !r.called("install_name_tool") {
		t.Error("install name was not re-stamped")
	}
	if b.BinaryPath() != filepath.Join(b.Dir, "onnxruntime") {
		t.Errorf("BinaryPath = %q", b.BinaryPath())
	}
}

func TestAssembleModuleMapVariants(t *testing.T) {
	headerDir := t.TempDir()
	writeHeaders(t, headerDir, true)
	lib := writeLibrary(t, t.TempDir())

	for _, coreml := range []bool{true, false} {
		outDir := t.TempDir()
		lib.CoreML = coreml
		b, err := Assemble(&stubRunner{}, lib, headerDir, outDir, "1.22.0")
		if err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(filepath.Join(b.Dir, "Modules", "module.modulemap"))
		if err != nil {
			t.Fatal(err)
		}
		got := string(data)
		hasHeader := strings.Contains(got, `header "coreml_provider_factory.h"`)
		hasLink := strings.Contains(got, `link framework "CoreML"`)
		if hasHeader != coreml || hasLink != coreml {
			t.Errorf("coreml=%t: modulemap header=%t link=%t:\n%s", coreml, hasHeader, hasLink, got)
		}
	}
}

func TestAssembleDeterministicAndIdempotent(t *testing.T) {
	headerDir := t.TempDir()
	outDir := t.TempDir()
	writeHeaders(t, headerDir, true)
	lib := writeLibrary(t, t.TempDir())

	read := func(b Bundle) (string, string) {
		plist, err := os.ReadFile(filepath.Join(b.Dir, "Info.plist"))
		if err != nil {
			t.Fatal(err)
		}
		modmap, err := os.ReadFile(filepath.Join(b.Dir, "Modules", "module.modulemap"))
		if err != nil {
			t.Fatal(err)
		}
		return string(plist), string(modmap)
	}

	b1, err := Assemble(&stubRunner{}, lib, headerDir, outDir, "1.22.0")
	if err != nil {
		t.Fatal(err)
	}
	plist1, modmap1 := read(b1)

	b2, err := Assemble(&stubRunner{}, lib, headerDir, outDir, "1.22.0")
	if err != nil {
		t.Fatal(err)
	}
	plist2, modmap2 := read(b2)

	if plist1 != plist2 {
		t.Error("Info.plist differs across identical runs")
	}
	if modmap1 != modmap2 {
		t.Error("module.modulemap differs across identical runs")
	}
}

func TestAssembleMissingRequiredHeader(t *testing.T) {
	headerDir := t.TempDir()
	writeHeaders(t, headerDir, true)
	if err := os.Remove(filepath.Join(headerDir, "onnxruntime_cxx_api.h")); err != nil {
		t.Fatal(err)
	}
	lib := writeLibrary(t, t.TempDir())

	_, err := Assemble(&stubRunner{}, lib, headerDir, t.TempDir(), "1.22.0")
	var ae *AssemblyError
	if !errors.As(err, &ae) {
		t.Fatalf("Assemble = %v, want AssemblyError", err)
	}
	if ae.Header != "onnxruntime_cxx_api.h" {
		t.Errorf("AssemblyError.Header = %q", ae.Header)
	}
}

func TestAssembleMissingOptionalHeader(t *testing.T) {
	headerDir := t.TempDir()
	writeHeaders(t, headerDir, false) // no coreml header on disk
	lib := writeLibrary(t, t.TempDir())
	lib.CoreML = true

	b, err := Assemble(&stubRunner{}, lib, headerDir, t.TempDir(), "1.22.0")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if b.CoreML {
		t.Error("bundle still records CoreML after optional header downgrade")
	}
	data, err := os.ReadFile(filepath.Join(b.Dir, "Modules", "module.modulemap"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "CoreML") {
		t.Errorf("modulemap references CoreML without its header:\n%s", data)
	}
}

func TestAssemblePlistRecordsVariant(t *testing.T) {
	headerDir := t.TempDir()
	writeHeaders(t, headerDir, true)
	lib := writeLibrary(t, t.TempDir())

	outDir := t.TempDir()
	b, err := Assemble(&stubRunner{}, lib, headerDir, outDir, "1.22.0")
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadBundle(b.Platform, b.Dir)
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.CoreML {
		t.Error("LoadBundle lost the CoreML variant")
	}
	if loaded.Version != "1.22.0" {
		t.Errorf("LoadBundle version = %q", loaded.Version)
	}
}
