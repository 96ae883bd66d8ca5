package version

// Set at build time with -ldflags.
var (
	Branch   = "unknown"
	Revision = "unknown"
)
