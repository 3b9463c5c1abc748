// Package version carries build metadata, set with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/oukeidos/codetr/internal/version.Version=0.2.0 -X github.com/oukeidos/codetr/internal/version.Commit=$(git rev-parse --short HEAD)"
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "0.1.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info returns the multi-line text printed by --version.
func Info() string {
	return fmt.Sprintf("codetr %s\ncommit: %s\nbuild: %s\ngo: %s %s/%s", Version, Commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
