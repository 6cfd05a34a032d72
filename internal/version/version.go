// Package version holds build metadata injected via ldflags:
//
//	-X github.com/kailas-cloud/userdex/internal/version.Version=v1.2.3
package version

import (
	"fmt"
	"runtime"
)

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders build metadata on one line.
func String() string {
	return fmt.Sprintf("userdex %s (commit %s, built %s, %s)", Version, Commit, Date, runtime.Version())
}
