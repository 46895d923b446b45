package version

import (
	"fmt"
	"runtime"

	goversion "github.com/hashicorp/go-version"
)

var (
	// Version is the version of the CLI
	Version = "0.1.0"
	// BuildDate is the build date
	BuildDate = "unknown"
	// GitCommit is the git commit hash
	GitCommit = "unknown"
)

// Info holds version information
type Info struct {
	Version   string
	BuildDate string
	GitCommit string
	GoVersion string
	Platform  string
	// SQLite is the version of the linked SQLite library, when known
	SQLite string
}

// Get returns version information
func Get() Info {
	return Info{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// Semver parses the CLI version
func (i Info) Semver() (*goversion.Version, error) {
	v, err := goversion.NewSemver(i.Version)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", i.Version, err)
	}
	return v, nil
}

// IsRelease reports whether the CLI was built from a tagged release
func (i Info) IsRelease() bool {
	v, err := i.Semver()
	return err == nil && v.Prerelease() == "" && i.GitCommit != "unknown"
}

// String returns a formatted version string
func (i Info) String() string {
	return fmt.Sprintf("sequel version %s (%s %s)", i.Version, i.Platform, i.GoVersion)
}

// FullString returns a detailed version string
func (i Info) FullString() string {
	s := fmt.Sprintf(`sequel version %s
Build Date: %s
Git Commit: %s
Platform: %s
Go Version: %s`, i.Version, i.BuildDate, i.GitCommit, i.Platform, i.GoVersion)
	if i.SQLite != "" {
		s += "\nSQLite: " + i.SQLite
	}
	return s
}
