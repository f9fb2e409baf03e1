// Package buildinfo holds the version stamped into the cladding binary.
//
// The variables are set with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/cladding/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/cladding/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/cladding/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/cladding
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the build information on three lines.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return "{{.Name}} " + String() + "\n"
}

// UserAgent identifies the binary to the services it talks to.
func UserAgent() string {
	return "cladding/" + Version
}
