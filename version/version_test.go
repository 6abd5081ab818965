package version

import "testing"

func TestGetFullVersion(t *testing.T) {
	oldVersion, oldCommit := Version, CommitHash
	t.Cleanup(func() { Version, CommitHash = oldVersion, oldCommit })

	Version = "2.1.0"
	CommitHash = "unknown"
	if got := GetFullVersion(); got != "2.1.0" {
		t.Fatalf("GetFullVersion() = %q, want %q", got, "2.1.0")
	}

	CommitHash = "abc"
	if got := GetFullVersion(); got != "2.1.0" {
		t.Fatalf("short commit should be ignored, got %q", got)
	}

	CommitHash = "0123456789abcdef"
	if got := GetFullVersion(); got != "2.1.0 (0123456)" {
		t.Fatalf("GetFullVersion() = %q", got)
	}
	if got := AssetVersion(); got != "2.1.0-0123456" {
		t.Fatalf("AssetVersion() = %q", got)
	}
}
