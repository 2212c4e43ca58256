package internal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/ortpack/ortpack/internal/pack"
	"github.com/spf13/cobra"
)

var cleanAll bool
var cleanIOS bool
var cleanMacOS bool
var cleanFrameworks bool
var cleanYes bool
var cleanConfig string
var cleanRoot string

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete build output directories",
	Long: `Clean deletes subsets of the build output tree. With no selection flags
it presents an interactive menu. Deletion always asks for confirmation
unless --yes is given.`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanAll, "all", false, "Delete all build outputs")
	cleanCmd.Flags().BoolVar(&cleanIOS, "ios", false, "Delete iOS device and simulator build trees")
	cleanCmd.Flags().BoolVar(&cleanMacOS, "macos", false, "Delete macOS build trees")
	cleanCmd.Flags().BoolVar(&cleanFrameworks, "frameworks", false, "Delete packaged xcframework outputs")
	cleanCmd.Flags().StringVar(&cleanConfig, "config", "", "Restrict to one build configuration")
	cleanCmd.Flags().BoolVarP(&cleanYes, "yes", "y", false, "Skip the confirmation prompt")
	cleanCmd.Flags().StringVar(&cleanRoot, "root", ".", "Output root directory")
	rootCmd.AddCommand(cleanCmd)
}

type cleanSelection struct {
	all        bool
	ios        bool
	macos      bool
	frameworks bool
	config     string
}

func runClean(cmd *cobra.Command, args []string) error {
	root, err := filepath.Abs(cleanRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve output root: %w", err)
	}

	sel := cleanSelection{
		all:        cleanAll,
		ios:        cleanIOS,
		macos:      cleanMacOS,
		frameworks: cleanFrameworks,
		config:     cleanConfig,
	}
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	if !sel.all && !sel.ios && !sel.macos && !sel.frameworks {
		if sel.config != "" {
			// --config alone means everything for that configuration.
			sel.all = true
		} else {
			choice, err := promptMenu(in, out)
			if err != nil {
				return err
			}
			if choice == nil {
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}
			sel = *choice
		}
	}

	targets, err := cleanTargets(root, sel)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		fmt.Fprintln(out, "Nothing to clean.")
		return nil
	}

	if !cleanYes {
		fmt.Fprintln(out, "The following directories will be deleted:")
		for _, dir := range targets {
			fmt.Fprintf(out, "  %s\n", dir)
		}
		fmt.Fprint(out, "Proceed? [y/N] ")
		answer, _ := in.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	for _, dir := range targets {
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
		glog.V(1).Infof("removed %s", dir)
	}
	fmt.Fprintf(out, "Removed %d directories.\n", len(targets))
	return nil
}

func promptMenu(in *bufio.Reader, out io.Writer) (*cleanSelection, error) {
	fmt.Fprintln(out, "Select what to clean:")
	fmt.Fprintln(out, "  1) all build outputs")
	fmt.Fprintln(out, "  2) iOS build trees")
	fmt.Fprintln(out, "  3) macOS build trees")
	fmt.Fprintln(out, "  4) packaged frameworks")
	fmt.Fprintln(out, "  5) cancel")
	fmt.Fprint(out, "Choice: ")
	line, _ := in.ReadString('\n')
	switch strings.TrimSpace(line) {
	case "1":
		return &cleanSelection{all: true}, nil
	case "2":
		return &cleanSelection{ios: true}, nil
	case "3":
		return &cleanSelection{macos: true}, nil
	case "4":
		return &cleanSelection{frameworks: true}, nil
	case "5", "q", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("invalid option %q", strings.TrimSpace(line))
	}
}

// cleanTargets resolves a selection to the list of existing directories to
// delete under root/build.
func cleanTargets(root string, sel cleanSelection) ([]string, error) {
	var configs []pack.Config
	if sel.config != "" {
		cfg, err := pack.ParseConfig(sel.config)
		if err != nil {
			return nil, err
		}
		configs = []pack.Config{cfg}
	} else {
		configs = pack.Configs()
	}

	var targets []string
	add := func(dir string) {
		if _, err := os.Stat(dir); err == nil {
			targets = append(targets, dir)
		}
	}
	for _, cfg := range configs {
		base := filepath.Join(root, "build", string(cfg))
		if sel.all {
			add(base)
			continue
		}
		if sel.ios {
			add(filepath.Join(base, "iphoneos"))
			add(filepath.Join(base, "iphonesimulator"))
		}
		if sel.macos {
			add(filepath.Join(base, "macosx"))
		}
		if sel.frameworks {
			add(filepath.Join(base, "framework_out"))
		}
	}
	return targets, nil
}
