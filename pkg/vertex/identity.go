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

package vertex

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// ComputeID derives the deterministic 64-bit identity of an entity from its
// normalized file path, qualified name, and kind, rendered as 16 lowercase
// hex digits. Re-extracting the same declaration from identical source
// always yields the same ID; two different declarations colliding on ID is
// treated as a bug in this function, not a data error (see Graph.AddNode).
func ComputeID(file, qualifiedName string, kind Kind) string {
	h := xxhash.New()
	_, _ = h.Write([]byte(file))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(qualifiedName))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(kind))
	return fmt.Sprintf("%016x", h.Sum64())
}

// New creates a Vertex with its ID computed from file, qualifiedName, and
// kind, mirroring the teacher's constructor-computes-ID convention.
func New(name, qualifiedName string, kind Kind, file string) Vertex {
	return Vertex{
		ID:            ComputeID(file, qualifiedName, kind),
		Name:          name,
		QualifiedName: qualifiedName,
		Kind:          kind,
		File:          file,
		Visibility:    VisibilityPrivate,
	}
}
