package internal

import (
	"fmt"
	"path/filepath"

	"github.com/ortpack/ortpack/internal/pack"
	"github.com/spf13/cobra"
)

var packRoot string

var packCmd = &cobra.Command{
	Use:   "pack [config]",
	Short: "Package previously assembled frameworks into an xcframework",
	Long: `Pack skips the native build entirely and packages the per-platform
frameworks assembled by an earlier build run into onnxruntime.xcframework.
It fails if any platform's framework binary is missing.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPack,
}

func init() {
	packCmd.Flags().StringVar(&packRoot, "root", ".", "Output root directory")
	rootCmd.AddCommand(packCmd)
}

func runPack(cmd *cobra.Command, args []string) error {
	cfg, err := pack.ParseConfig(configArg(args))
	if err != nil {
		return err
	}
	root, err := filepath.Abs(packRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve output root: %w", err)
	}
	layout := pack.Layout{Root: root, Config: cfg}

	var bundles []pack.Bundle
	for _, p := range pack.Platforms() {
		b, err := pack.LoadBundle(p, layout.FrameworkDir(p))
		if err != nil {
			return fmt.Errorf("no assembled framework for %s, run 'ortpack build %s' first: %w", p.Tag, cfg, err)
		}
		bundles = append(bundles, b)
	}

	_, err = pack.Package(pack.NewExecRunner(), cfg, bundles, layout.XCFrameworkPath())
	return err
}
