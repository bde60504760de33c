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

// Package store persists the code graph in an embedded bbolt database
// under the flat keyspace named in spec §6: meta:version, n:<id>,
// f:<path>, m:<path>. Each key family gets its own bbolt bucket rather
// than a single flat namespace, since bbolt buckets are themselves an
// ordered key-value map and give the same prefix-scan behavior the
// original keyspace describes without string-prefix parsing.
package store

// CurrentVersion is the cache schema version stamped into the meta
// bucket. A mismatch on open triggers either an error or a reset,
// depending on how the caller opens the store.
const CurrentVersion = "codegraph-1"

var (
	bucketMeta = []byte("meta")
	bucketN    = []byte("n") // vertex id -> gob-encoded vertex.Vertex
	bucketF    = []byte("f") // file path -> gob-encoded []string vertex ids
	bucketM    = []byte("m") // file path -> gob-encoded int64 mtime seconds
)

var keyVersion = []byte("version")
