//go:build !sqlite_cgo

package vectorstore

// This file is compiled when building without the sqlite_cgo tag. It uses a
// pure Go SQLite implementation: no C compiler required, cross-platform
// compilation, slower scans on very large collections.
//
// Build command:
//   CGO_ENABLED=0 go build ./...
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
