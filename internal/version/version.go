// Package version reports the version of minwasm a binary was built with.
package version

import "runtime/debug"

// Default is the version when the build info doesn't include one, such as when built from a source checkout.
const Default = "dev"

const modulePath = "github.com/tetratelabs/minwasm"

// GetMinwasmVersion returns the version of minwasm in the build info, ex. "v0.1.0" when installed with go install, or
// the version required by the main module when minwasm is a dependency.
func GetMinwasmVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Default
	}
	return versionOf(info)
}

func versionOf(info *debug.BuildInfo) string {
	if info.Main.Path == modulePath {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
		return Default
	}
	for _, dep := range info.Deps {
		if dep.Path != modulePath {
			continue
		}
		if dep.Replace != nil && dep.Replace.Version != "" {
			return dep.Replace.Version
		}
		return dep.Version
	}
	return Default
}
