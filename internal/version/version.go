// Package version reports the build version of the tchat binary.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

const defaultModule = "pkt.systems/tchat"

// buildVersion is set via -ldflags "-X pkt.systems/tchat/internal/version.buildVersion=...".
var buildVersion = ""

// Info describes the running build.
type Info struct {
	Version  string
	Module   string
	Revision string
	Dirty    bool
}

// String renders the one-line form printed by `tchat version`.
func (i Info) String() string {
	out := fmt.Sprintf("tchat %s (%s)", i.Version, i.Module)
	if i.Dirty {
		out += " dirty"
	}
	return out
}

// Current returns the best available version string.
func Current() string {
	return Read().Version
}

// Read collects version details from ldflags and the embedded build info.
func Read() Info {
	info, _ := debug.ReadBuildInfo()
	return fromBuildInfo(info, buildVersion)
}

func fromBuildInfo(info *debug.BuildInfo, override string) Info {
	out := Info{Version: "v0.0.0-unknown", Module: defaultModule}
	vcs := readVCS(info)
	out.Revision = vcs.revision
	out.Dirty = vcs.modified
	if info != nil {
		if path := strings.TrimSpace(info.Main.Path); path != "" {
			out.Module = path
		}
	}
	switch {
	case strings.TrimSpace(override) != "":
		out.Version = strings.TrimSuffix(strings.TrimSpace(override), "+dirty")
	case info != nil && info.Main.Version != "" && info.Main.Version != "(devel)":
		out.Version = strings.TrimSuffix(info.Main.Version, "+dirty")
	default:
		if pseudo := vcs.pseudo(); pseudo != "" {
			out.Version = pseudo
		}
	}
	return out
}

type vcsInfo struct {
	revision string
	at       time.Time
	modified bool
}

func readVCS(info *debug.BuildInfo) vcsInfo {
	var out vcsInfo
	if info == nil {
		return out
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			out.revision = setting.Value
		case "vcs.time":
			if parsed, err := time.Parse(time.RFC3339, setting.Value); err == nil {
				out.at = parsed
			}
		case "vcs.modified":
			out.modified = setting.Value == "true"
		}
	}
	return out
}

// pseudo builds a Go-style pseudo version from VCS stamps.
func (v vcsInfo) pseudo() string {
	if v.revision == "" || v.at.IsZero() {
		return ""
	}
	rev := v.revision
	if len(rev) > 12 {
		rev = rev[:12]
	}
	return "v0.0.0-" + v.at.UTC().Format("20060102150405") + "-" + rev
}
