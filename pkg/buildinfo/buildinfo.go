package buildinfo

import (
	"runtime"
	"runtime/debug"
)

// BinaryVersion is set at build time via -ldflags. Defaults to "dev".
var BinaryVersion = "dev"

// ModuleVersion returns the module version embedded by the Go toolchain (when available).
func ModuleVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return ""
}

// Info is the extended version payload printed by `scriptcat version --extended`.
type Info struct {
	Version       string `json:"version"`
	ModuleVersion string `json:"module_version,omitempty"`
	GoVersion     string `json:"go_version"`
	Platform      string `json:"platform"`
	Arch          string `json:"arch"`
}

// Collect gathers the build information for the running binary.
func Collect() Info {
	return Info{
		Version:       BinaryVersion,
		ModuleVersion: ModuleVersion(),
		GoVersion:     runtime.Version(),
		Platform:      runtime.GOOS,
		Arch:          runtime.GOARCH,
	}
}
