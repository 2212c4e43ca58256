package pack

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/google/uuid"
)

// Distribution is the final multi-platform artifact.
type Distribution struct {
	Path      string
	Platforms []PlatformInfo
}

// PlatformInfo is the per-platform record written to framework_info.json.
type PlatformInfo struct {
	Platform     string `json:"platform"`
	SDK          string `json:"sdk"`
	Arch         string `json:"arch"`
	MinOSVersion string `json:"minimum_os_version"`
	CoreML       bool   `json:"coreml_execution_provider"`
	BinarySize   int64  `json:"binary_size"`
}

type frameworkInfo struct {
	Version   string         `json:"version"`
	Config    string         `json:"build_config"`
	Platforms []PlatformInfo `json:"platforms"`
}

// Package verifies every bundle, then invokes xcodebuild once to produce the
// xcframework at outPath. The artifact is staged under a unique sibling name
// and renamed into place only on success, so a failed run never leaves a
// partial artifact at the final path.
func Package(r Runner, cfg Config, bundles []Bundle, outPath string) (*Distribution, error) {
	var infos []PlatformInfo
	for _, b := range bundles {
		st, err := os.Stat(b.BinaryPath())
		if err != nil {
			return nil, &PackageError{Reason: PackageMissingBundle, Bundle: b.Platform.Tag}
		}
		infos = append(infos, PlatformInfo{
			Platform:     b.Platform.Tag,
			SDK:          b.Platform.SDK,
			Arch:         b.Platform.Arch,
			MinOSVersion: b.Platform.MinOSVersion,
			CoreML:       b.CoreML,
			BinarySize:   st.Size(),
		})
	}

	accelerated := false
	for _, info := range infos {
		accelerated = accelerated || info.CoreML
	}
	if !accelerated {
		glog.Warning("packaging a CPU-only distribution: no bundle carries the CoreML execution provider")
	}

	if err := os.RemoveAll(outPath); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, err
	}

	staging := outPath + ".stage-" + uuid.NewString()
	defer os.RemoveAll(staging)

	args := []string{"-create-xcframework"}
	for _, b := range bundles {
		args = append(args, "-framework", b.Dir)
	}
	args = append(args, "-output", staging)
	if err := r.Run("xcodebuild", args...); err != nil {
		e := &PackageError{Reason: PackageToolFailed, Err: err}
		var te *ToolError
		if errors.As(err, &te) {
			e.Output = te.Output
		}
		return nil, e
	}
	if err := os.Rename(staging, outPath); err != nil {
		return nil, err
	}

	glog.Infof("created %s", outPath)
	for _, info := range infos {
		glog.Infof("  %-16s %d bytes", info.Platform, info.BinarySize)
	}

	version := ""
	if len(bundles) > 0 {
		version = bundles[0].Version
	}
	report := frameworkInfo{Version: version, Config: string(cfg), Platforms: infos}
	data, err := json.MarshalIndent(report, "", "\t")
	if err != nil {
		return nil, err
	}
	infoPath := filepath.Join(filepath.Dir(outPath), "framework_info.json")
	if err := os.WriteFile(infoPath, append(data, '\n'), 0o644); err != nil {
		return nil, err
	}
	return &Distribution{Path: outPath, Platforms: infos}, nil
}
