package internal

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func makeBuildTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, cfg := range []string{"Release", "Debug"} {
		for _, sub := range []string{"iphoneos", "iphonesimulator", "macosx", "framework_out"} {
			if err := os.MkdirAll(filepath.Join(root, "build", cfg, sub), 0o755); err != nil {
				t.Fatal(err)
			}
		}
	}
	return root
}

func TestCleanTargets(t *testing.T) {
	root := makeBuildTree(t)

	tests := []struct {
		name string
		sel  cleanSelection
		want []string
	}{
		{
			name: "all configs all outputs",
			sel:  cleanSelection{all: true},
			want: []string{"build/Release", "build/Debug"},
		},
		{
			name: "ios only",
			sel:  cleanSelection{ios: true},
			want: []string{
				"build/Release/iphoneos", "build/Release/iphonesimulator",
				"build/Debug/iphoneos", "build/Debug/iphonesimulator",
			},
		},
		{
			name: "macos restricted to one config",
			sel:  cleanSelection{macos: true, config: "Debug"},
			want: []string{"build/Debug/macosx"},
		},
		{
			name: "frameworks",
			sel:  cleanSelection{frameworks: true, config: "Release"},
			want: []string{"build/Release/framework_out"},
		},
		{
			name: "combined selection",
			sel:  cleanSelection{macos: true, frameworks: true, config: "Release"},
			want: []string{"build/Release/macosx", "build/Release/framework_out"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cleanTargets(root, tt.sel)
			if err != nil {
				t.Fatal(err)
			}
			want := make(map[string]bool, len(tt.want))
			for _, w := range tt.want {
				want[filepath.Join(root, filepath.FromSlash(w))] = true
			}
			if len(got) != len(want) {
				t.Fatalf("cleanTargets = %v, want %v", got, tt.want)
			}
			for _, g := range got {
				if !want[g] {
					t.Errorf("unexpected target %s", g)
				}
			}
		})
	}
}

func TestCleanTargetsInvalidConfig(t *testing.T) {
	root := makeBuildTree(t)
	if _, err := cleanTargets(root, cleanSelection{all: true, config: "Bogus"}); err == nil {
		t.Fatal("cleanTargets accepted an unknown configuration")
	}
}

func TestCleanTargetsSkipsMissingDirs(t *testing.T) {
	root := t.TempDir() // no build tree at all
	got, err := cleanTargets(root, cleanSelection{all: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("cleanTargets = %v, want none", got)
	}
}

func TestPromptMenu(t *testing.T) {
	tests := []struct {
		input   string
		want    *cleanSelection
		wantErr bool
	}{
		{"1\n", &cleanSelection{all: true}, false},
		{"2\n", &cleanSelection{ios: true}, false},
		{"3\n", &cleanSelection{macos: true}, false},
		{"4\n", &cleanSelection{frameworks: true}, false},
		{"5\n", nil, false},
		{"7\n", nil, true},
		{"bogus\n", nil, true},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			got, err := promptMenu(bufio.NewReader(strings.NewReader(tt.input)), &out)
			if tt.wantErr {
				if err == nil {
					t.Fatal("promptMenu accepted an invalid option")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("promptMenu = %v, want %v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("promptMenu = %+v, want %+v", *got, *tt.want)
			}
		})
	}
}

func TestConfigArg(t *testing.T) {
	if got := configArg(nil); got != "Release" {
		t.Errorf("configArg(nil) = %q, want Release", got)
	}
	if got := configArg([]string{"Debug"}); got != "Debug" {
		t.Errorf("configArg = %q, want Debug", got)
	}
}
