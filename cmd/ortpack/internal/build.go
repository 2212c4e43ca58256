package internal

import (
	"fmt"
	"io"
	"path/filepath"
	"runtime"

	"github.com/golang/glog"
	"github.com/ortpack/ortpack/internal/pack"
	"github.com/ortpack/ortpack/pkgs/ortbuild"
	"github.com/spf13/cobra"
)

var buildVerbose bool
var buildSkip bool
var buildSource string
var buildRoot string
var buildVersion string

var buildCmd = &cobra.Command{
	Use:   "build [config]",
	Short: "Build ONNX Runtime for every Apple platform and package an xcframework",
	Long: `Build runs the native ONNX Runtime build once per platform (iOS device,
iOS simulator, macOS), combines and assembles each platform's framework,
and packages them into onnxruntime.xcframework.

The optional positional argument selects the build configuration
(Release, Debug, RelWithDebInfo or MinSizeRel); the default is Release.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().BoolVarP(&buildVerbose, "verbose", "v", false, "Enable verbose build output")
	buildCmd.Flags().BoolVar(&buildSkip, "skip-build", false, "Reuse existing native build trees, only combine and package")
	buildCmd.Flags().StringVarP(&buildSource, "source", "s", ".", "ONNX Runtime source checkout")
	buildCmd.Flags().StringVar(&buildRoot, "root", ".", "Output root directory")
	buildCmd.Flags().StringVar(&buildVersion, "runtime-version", "", "Runtime version stamped into descriptors (default: source VERSION_NUMBER)")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := pack.ParseConfig(configArg(args))
	if err != nil {
		return err
	}
	source, err := filepath.Abs(buildSource)
	if err != nil {
		return fmt.Errorf("failed to resolve source path: %w", err)
	}
	root, err := filepath.Abs(buildRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve output root: %w", err)
	}

	version := buildVersion
	if version == "" {
		version, err = pack.ReadVersion(source)
		if err != nil {
			glog.Warningf("cannot read runtime version from source tree: %v", err)
			version = "0.0.0"
		}
	}

	opts := pack.Options{
		Root:      root,
		SourceDir: source,
		HeaderDir: filepath.Join(source, "include"),
		Version:   version,
		Builder: &scriptBuilder{
			sourceDir: source,
			root:      root,
			verbose:   buildVerbose,
		},
		Runner:    pack.NewExecRunner(),
		SkipBuild: buildSkip,
	}
	return pack.Run(cfg, opts)
}

// scriptBuilder implements pack.Builder on top of the runtime's build.sh.
type scriptBuilder struct {
	sourceDir string
	root      string
	verbose   bool
}

func (b *scriptBuilder) Build(cfg pack.Config, p pack.Platform, useCoreML bool) error {
	layout := pack.Layout{Root: b.root, Config: cfg}
	t := ortbuild.New(b.sourceDir, layout.BuildDir(p))
	t.Config(string(cfg))
	t.Sysroot(p.SDK)
	t.Arch(p.Arch)
	t.DeployTarget(p.MinOSVersion)
	t.CoreML(useCoreML && p.SupportsCoreML)
	t.Parallel(runtime.NumCPU())
	if !b.verbose {
		t.Stdout(io.Discard)
	}
	glog.Infof("building %s for %s (CoreML=%t)", cfg, p.Tag, useCoreML && p.SupportsCoreML)
	return t.Run()
}
