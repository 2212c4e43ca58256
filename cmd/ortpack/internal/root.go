package internal

import (
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ortpack",
	Short: "ortpack builds and packages ONNX Runtime for Apple platforms",
	Long: `ortpack drives the ONNX Runtime native build for iOS devices, the iOS
simulator and macOS, combines the resulting libraries, and packages them
into a single onnxruntime.xcframework distribution.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	glog.Flush()
	if err != nil {
		os.Exit(1)
	}
}

// configArg resolves the optional positional configuration argument,
// defaulting to Release.
func configArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "Release"
}
