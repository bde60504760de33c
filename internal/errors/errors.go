// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package errors collects the sentinel error values named in the error
// handling design: wrap with fmt.Errorf's %w and compare with errors.Is,
// never with string matching.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var (
	// ErrNotFound means a query's node identifier did not resolve to any
	// vertex in the graph.
	ErrNotFound = errors.New("codegraph: not found")

	// ErrVersionMismatch means an opened store's stamped schema version
	// does not match the version this binary expects.
	ErrVersionMismatch = errors.New("codegraph: cache version mismatch")

	// ErrCorrupted means a stored record failed to deserialize.
	ErrCorrupted = errors.New("codegraph: corrupted record")

	// ErrUnsupportedLanguage means a file's extension has no registered
	// extractor.
	ErrUnsupportedLanguage = errors.New("codegraph: unsupported language")

	// ErrEmptyFile means a non-trivial empty file was passed to a
	// single-file extraction call.
	ErrEmptyFile = errors.New("codegraph: empty file")
)

// Is is a re-export of the standard library's errors.Is for callers that
// only import this package.
func Is(err, target error) bool { return errors.Is(err, target) }

// As is a re-export of the standard library's errors.As.
func As(err error, target any) bool { return errors.As(err, target) }

// FatalError reports err to the user and exits with status 1. jsonOutput
// selects a single-line {"error": "..."} envelope over stderr text, so a
// command invoked with --json never has an error break its output parser.
func FatalError(err error, jsonOutput bool) {
	if jsonOutput {
		_ = json.NewEncoder(os.Stderr).Encode(map[string]string{"error": err.Error()})
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}
