// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers for Terrapoint
// binaries. It centralizes the raw stderr output that happens before
// or after the structured logger exists, and the exit-code convention
// shared by all binaries:
//
//	0 — success
//	2 — usage error (bad or missing command-line arguments)
//	3 — dependency or configuration error
//	4 — external tool failure or timeout
package process

import (
	"fmt"
	"os"
)

// Exit codes shared by all Terrapoint binaries.
const (
	ExitOK         = 0
	ExitUsage      = 2
	ExitDependency = 3
	ExitTool       = 4
)

// Fatal writes "error: err" to stderr and exits with the given code.
// Use it in main() for errors from run() where the structured logger
// may not be initialized.
func Fatal(err error, code int) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(code)
}
