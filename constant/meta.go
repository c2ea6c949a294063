// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// App is the canonical application identifier used for filesystem paths and CLI branding.
	App = "relayplay"

	// Version is the current application semantic version string.
	Version = "0.3.1"

	// UserAgent is sent with every request made to a relay node.
	UserAgent = App + "/" + Version
)

// Build metadata, overridden through -ldflags at release time.
var (
	BuiltAt  = ""
	BuiltBy  = ""
	Revision = ""
)
