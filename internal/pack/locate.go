package pack

import (
	"io/fs"
	"sort"
	"strings"
)

// Kind tags an artifact as static or dynamic. It is assigned once by the
// stage that discovered or created the artifact and never re-inferred.
type Kind int

const (
	KindStaticArchive Kind = iota
	KindDynamicLibrary
)

// Artifact is a located library file within the search filesystem.
type Artifact struct {
	Path string // slash-separated, relative to the searched fs.FS
	Kind Kind
}

const (
	libBaseName = "libonnxruntime"

	// mergedArchiveName is the Combine intermediate; never treated as input.
	mergedArchiveName = "libonnxruntime_merged.a"
)

// matchLibrary reports whether a file name is a runtime library artifact.
// The native build emits either the plain archive or (possibly versioned)
// dylibs like libonnxruntime.1.22.0.dylib.
func matchLibrary(name string) (Kind, bool) {
	switch {
	case name == libBaseName+".a":
		return KindStaticArchive, true
	case strings.HasPrefix(name, libBaseName) && strings.HasSuffix(name, ".dylib"):
		return KindDynamicLibrary, true
	}
	return 0, false
}

// skipDir reports whether a directory must be excluded from the search:
// debug-symbol bundles and CMake's compiler-support output.
func skipDir(name string) bool {
	return strings.HasSuffix(name, ".dSYM") || name == "CMakeFiles"
}

// Locate searches candidate directories in priority order for a runtime
// library and returns the first match. Each existing candidate is walked in
// full; within one candidate, ties break by lexicographic path order so the
// result does not depend on filesystem enumeration order.
func Locate(fsys fs.FS, cfg Config, p Platform, candidates []string) (Artifact, error) {
	for _, dir := range candidates {
		if _, err := fs.Stat(fsys, dir); err != nil {
			continue
		}
		found := findLibraries(fsys, dir)
		if len(found) > 0 {
			return found[0], nil
		}
	}
	return Artifact{}, &NotFoundError{Config: cfg, Platform: p.Tag, Candidates: candidates}
}

func findLibraries(fsys fs.FS, dir string) []Artifact {
	var found []Artifact
	fs.WalkDir(fsys, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if skipDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if kind, ok := matchLibrary(d.Name()); ok {
			found = append(found, Artifact{Path: path, Kind: kind})
		}
		return nil
	})
	sort.Slice(found, func(i, j int) bool { return found[i].Path < found[j].Path })
	return found
}

// CollectStaticLibs gathers every static archive under dir, with the same
// exclusions as Locate, sorted by path. The runtime's static build splits the
// library across several archives plus third-party dependencies; all of them
// feed the merge step.
func CollectStaticLibs(fsys fs.FS, dir string) []string {
	var libs []string
	fs.WalkDir(fsys, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if skipDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".a") && d.Name() != mergedArchiveName {
			libs = append(libs, path)
		}
		return nil
	})
	sort.Strings(libs)
	return libs
}
