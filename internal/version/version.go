package version

import (
	"fmt"
	"runtime"
)

// Set at build time with -ldflags "-X github.com/MrSnakeDoc/vault/internal/version.Version=...".
var (
	Version   = "dev"  // ex: v0.1.0
	Commit    = "none" // ex: abcd123
	BuildDate = ""     // ex: 2025-08-11T18:42:00Z
)

// String formats the build for logs and vaultctl's banner.
func String() string {
	s := fmt.Sprintf("%s (%s, %s)", Version, Commit, runtime.Version())
	if BuildDate != "" {
		s += " built " + BuildDate
	}
	return s
}
