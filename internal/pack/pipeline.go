package pack

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
)

// Builder drives the native compiler orchestration for one platform.
// The real implementation wraps the runtime's build script; tests stub it.
type Builder interface {
	Build(cfg Config, p Platform, useCoreML bool) error
}

// Options carries everything a pipeline run needs. It replaces the shell
// scripts' global variables with one immutable value handed to every stage.
type Options struct {
	Root      string // output root; all artifacts live under Root/build/<config>
	SourceDir string // ONNX Runtime source checkout
	HeaderDir string // directory holding the public headers to ship
	Version   string // runtime version stamped into descriptors
	Builder   Builder
	Runner    Runner
	SkipBuild bool // reuse existing native build trees
}

// Run executes the whole pipeline sequentially: per platform
// build, locate, combine, assemble; then one packaging step.
// Every failure aborts the run except the macOS CoreML fallback.
func Run(cfg Config, opts Options) error {
	layout := Layout{Root: opts.Root, Config: cfg}
	var bundles []Bundle
	for _, p := range Platforms() {
		b, err := buildPlatform(cfg, layout, p, opts)
		if err != nil {
			return err
		}
		bundles = append(bundles, b)
	}
	_, err := Package(opts.Runner, cfg, bundles, layout.XCFrameworkPath())
	return err
}

// buildPlatform produces one platform's bundle. For macOS the first attempt
// requests CoreML; if that attempt fails at any stage, only the macOS build
// tree is cleaned and the whole configure-and-build is retried with CoreML
// off. Errors from the fallback are fatal.
func buildPlatform(cfg Config, layout Layout, p Platform, opts Options) (Bundle, error) {
	useCoreML := p.SupportsCoreML
	b, err := attempt(cfg, layout, p, opts, useCoreML, !opts.SkipBuild)
	if err != nil && useCoreML && p.Tag == "macosx" {
		glog.Warningf("macosx build with CoreML failed, retrying without CoreML: %v", err)
		if rmErr := os.RemoveAll(layout.BuildDir(p)); rmErr != nil {
			return Bundle{}, rmErr
		}
		b, err = attempt(cfg, layout, p, opts, false, true)
	}
	return b, err
}

func attempt(cfg Config, layout Layout, p Platform, opts Options, useCoreML, doBuild bool) (Bundle, error) {
	if doBuild {
		if err := opts.Builder.Build(cfg, p, useCoreML); err != nil {
			return Bundle{}, err
		}
	}

	fsys := os.DirFS(layout.Root)
	candidates := layout.CandidatePaths(p)
	art, err := Locate(fsys, cfg, p, candidates)
	if err != nil {
		return Bundle{}, err
	}
	glog.V(1).Infof("located %s artifact: %s", p.Tag, art.Path)

	if err := os.MkdirAll(layout.BundleDir(p), 0o755); err != nil {
		return Bundle{}, err
	}

	var lib CombinedLibrary
	switch art.Kind {
	case KindDynamicLibrary:
		// Already a shared library; assembly re-stamps its install name.
		lib = CombinedLibrary{
			Path:     filepath.Join(layout.Root, filepath.FromSlash(art.Path)),
			Platform: p,
			CoreML:   useCoreML && p.SupportsCoreML,
		}
	default:
		// Collect from the whole candidate subtree the artifact was found
		// in: the static build splits across several archives plus
		// third-party dependency archives.
		dir := path.Dir(art.Path)
		for _, c := range candidates {
			if strings.HasPrefix(art.Path, c+"/") {
				dir = c
				break
			}
		}
		rels := CollectStaticLibs(fsys, dir)
		archives := make([]string, len(rels))
		for i, rel := range rels {
			archives[i] = filepath.Join(layout.Root, filepath.FromSlash(rel))
		}
		out := filepath.Join(layout.BundleDir(p), "libonnxruntime.dylib")
		lib, err = Combine(opts.Runner, p, archives, layout.BuildDir(p), out, useCoreML)
		if err != nil {
			return Bundle{}, err
		}
	}

	return Assemble(opts.Runner, lib, opts.HeaderDir, layout.BundleDir(p), opts.Version)
}
