package version

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set through -ldflags "-X github.com/ncobase/unicourse/version.Version=..."
var (
	Version  = "0.0.0"
	Branch   = "unknown"
	Revision = "unknown"
	BuiltAt  = "unknown"
)

// Info contains version information
type Info struct {
	Version   string `json:"version"`
	Branch    string `json:"branch"`
	Revision  string `json:"revision"`
	BuiltAt   string `json:"builtAt"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"goVersion"`
}

// GetVersionInfo returns the linker-provided version, completed with the
// VCS settings embedded by the go tool when the linker left defaults.
func GetVersionInfo() Info {
	info := Info{
		Version:   Version,
		Branch:    Branch,
		Revision:  Revision,
		BuiltAt:   BuiltAt,
		GoVersion: runtime.Version(),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		fillFromBuildInfo(&info, bi)
	}
	return info
}

func fillFromBuildInfo(info *Info, bi *debug.BuildInfo) {
	if info.Version == "0.0.0" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Revision == "unknown" && s.Value != "" {
				info.Revision = shortRevision(s.Value)
			}
		case "vcs.time":
			if info.BuiltAt == "unknown" && s.Value != "" {
				info.BuiltAt = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
}

func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// String returns a string representation of version information
func (i Info) String() string {
	rev := i.Revision
	if i.Modified {
		rev += "-dirty"
	}
	return fmt.Sprintf("Version: %s\nBranch: %s\nRevision: %s\nBuilt At: %s\nGo Version: %s",
		i.Version, i.Branch, rev, i.BuiltAt, i.GoVersion)
}

// JSON returns a JSON representation of version information
func (i Info) JSON() (string, error) {
	data, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
