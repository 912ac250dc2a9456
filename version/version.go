package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version is the application version, set via ldflags.
	Version string
	// Branch is the git branch, set via ldflags.
	Branch string
	// BuildUser is the user who built the binary, set via ldflags.
	BuildUser string
	// BuildDate is when the binary was built, set via ldflags.
	BuildDate string

	// Revision is the git commit revision.
	Revision = getRevision()
	// GoVersion is the Go version used to build.
	GoVersion = runtime.Version()
	// GoOS is the operating system target.
	GoOS = runtime.GOOS
	// GoArch is the architecture target.
	GoArch = runtime.GOARCH
)

// String summarizes the build for a version command.
func String() string {
	v := Version
	if v == "" {
		v = "devel"
	}

	s := fmt.Sprintf("%s (revision %s, %s %s/%s)", v, Revision, GoVersion, GoOS, GoArch)
	if BuildDate != "" {
		s += fmt.Sprintf(", built %s", BuildDate)
	}

	if BuildUser != "" {
		s += fmt.Sprintf(" by %s", BuildUser)
	}

	if Branch != "" {
		s += fmt.Sprintf(" from %s", Branch)
	}

	return s
}

func getRevision() string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	return revisionFrom(buildInfo.Settings)
}

func revisionFrom(settings []debug.BuildSetting) string {
	rev := "unknown"
	modified := false

	for _, v := range settings {
		switch v.Key {
		case "vcs.revision":
			rev = v.Value
		case "vcs.modified":
			modified = v.Value == "true"
		}
	}

	if modified {
		return rev + "-dirty"
	}

	return rev
}
