package version

// Version info injected via ldflags at build time
var (
	// Version is set via -ldflags "-X mortify/version.Version=x.x.x"
	Version = "1.0.0"

	// CommitHash is set via -ldflags "-X mortify/version.CommitHash=xxx"
	CommitHash = "unknown"

	// BuildTime is set via -ldflags "-X mortify/version.BuildTime=xxx"
	BuildTime = "unknown"
)

// GetVersion returns the version string
func GetVersion() string {
	return Version
}

// GetFullVersion returns the version including the short commit hash
func GetFullVersion() string {
	if CommitHash == "unknown" || len(CommitHash) < 7 {
		return Version
	}
	return Version + " (" + CommitHash[:7] + ")"
}

// AssetVersion is the cache-busting token appended to stylesheet and script URLs.
func AssetVersion() string {
	if CommitHash == "unknown" || len(CommitHash) < 7 {
		return Version
	}
	return Version + "-" + CommitHash[:7]
}

// GetBuildInfo returns build metadata
func GetBuildInfo() string {
	return "Mortify\nVersion: " + Version + "\nCommit: " + CommitHash + "\nBuild Time: " + BuildTime
}
