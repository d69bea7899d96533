// Package constant defines immutable application-level identifiers and build metadata.
package constant

const (
	// App is the canonical application identifier used for filesystem paths, env prefixes and CLI branding.
	App = "reelplay"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// UserAgent is sent with every request to the streaming API.
	UserAgent = App + "/" + Version
)

// Build metadata, injected with -ldflags "-X".
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)

// Logo is printed above the root command's long help.
const Logo = `               _       _
 _ __ ___  ___| |_ __ | | __ _ _   _
| '__/ _ \/ _ \ | '_ \| |/ _` + "`" + ` | | | |
| | |  __/  __/ | |_) | | (_| | |_| |
|_|  \___|\___|_| .__/|_|\__,_|\__, |
                |_|            |___/`
