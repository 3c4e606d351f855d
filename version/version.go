package version

// Version and Revision are set via -ldflags at release build time.
var (
	Version  = "dev"
	Revision = "unknown"
)
