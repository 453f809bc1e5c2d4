// Package buildinfo carries the version stamped in with
//
//	-ldflags "-X phosphor/internal/buildinfo.Version=... -X ...Commit=... -X ...Date=..."
package buildinfo

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Short is the release version, else the commit, else "dev". Used in the window
// title and by /healthz.
func Short() string {
	switch {
	case Version != "" && Version != "dev":
		return Version
	case Commit != "" && Commit != "unknown":
		return Commit
	}
	return "dev"
}

// Full is every stamped field, for the startup log line.
func Full() string {
	return Version + " (" + Commit + ", " + Date + ")"
}
