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

package store

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"log/slog"
	"time"

	bolt "go.etcd.io/bbolt"

	cgerrors "github.com/kraklabs/codegraph/internal/errors"
	"github.com/kraklabs/codegraph/pkg/codegraph"
	"github.com/kraklabs/codegraph/pkg/graphbuild"
	"github.com/kraklabs/codegraph/pkg/vertex"
)

// Store is a bbolt-backed persistent cache of vertex records, keyed by id
// and indexed by file for incremental reconciliation.
type Store struct {
	db     *bolt.DB
	logger *slog.Logger
}

// open opens (creating if necessary) the bbolt file at path and ensures
// the four key-family buckets exist. It does not check the schema
// version; callers should follow with OpenOrCreate's version check or
// OpenOrReset's reset-on-mismatch behavior.
func open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}

	s := &Store{db: db, logger: logger}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketMeta, bucketN, bucketF, bucketM} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenOrCreate opens the store at path. If the meta:version key is
// absent, it stamps CurrentVersion. If present and different, it returns
// ErrVersionMismatch without modifying the store.
func OpenOrCreate(path string, logger *slog.Logger) (*Store, error) {
	s, err := open(path, logger)
	if err != nil {
		return nil, err
	}

	found, err := s.readVersion()
	if err != nil {
		s.Close()
		return nil, err
	}
	if found == "" {
		if err := s.stampVersion(); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	}
	if found != CurrentVersion {
		s.Close()
		return nil, fmt.Errorf("%w: expected %s, found %s", cgerrors.ErrVersionMismatch, CurrentVersion, found)
	}
	return s, nil
}

// OpenOrReset is OpenOrCreate, except a version mismatch clears every
// bucket and re-stamps the current version instead of returning an error.
func OpenOrReset(path string, logger *slog.Logger) (*Store, error) {
	s, err := open(path, logger)
	if err != nil {
		return nil, err
	}

	found, err := s.readVersion()
	if err != nil {
		s.Close()
		return nil, err
	}
	if found != CurrentVersion {
		if found != "" {
			s.logger.Warn("cache version mismatch, resetting", "expected", CurrentVersion, "found", found)
		}
		if err := s.Clear(); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) readVersion() (string, error) {
	var version string
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketMeta).Get(keyVersion)
		if v != nil {
			version = string(v)
		}
		return nil
	})
	return version, err
}

func (s *Store) stampVersion() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(keyVersion, []byte(CurrentVersion))
	})
}

// stampArbitraryVersionForTest overwrites the stamped version directly,
// letting tests simulate opening a store written by an older binary.
func (s *Store) stampArbitraryVersionForTest(version string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(keyVersion, []byte(version))
	})
}

// Clear wipes every bucket and re-stamps the current version.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketMeta, bucketN, bucketF, bucketM} {
			if err := tx.DeleteBucket(bucket); err != nil && err != bolt.ErrBucketNotFound {
				return fmt.Errorf("delete bucket %s: %w", bucket, err)
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return fmt.Errorf("recreate bucket %s: %w", bucket, err)
			}
		}
		return tx.Bucket(bucketMeta).Put(keyVersion, []byte(CurrentVersion))
	})
}

// GetMtime returns the last-indexed mtime (seconds since epoch) recorded
// for path, or false if path is not cached.
func (s *Store) GetMtime(path string) (int64, bool, error) {
	var mtime int64
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketM).Get([]byte(path))
		if raw == nil {
			return nil
		}
		found = true
		return gobDecode(raw, &mtime)
	})
	return mtime, found, err
}

// GetFileNodes returns the vertex ids recorded as defined in path.
func (s *Store) GetFileNodes(path string) ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketF).Get([]byte(path))
		if raw == nil {
			return nil
		}
		return gobDecode(raw, &ids)
	})
	return ids, err
}

// GetVertices returns the decoded vertex records for the given ids,
// skipping any id no longer present (e.g. a race with a concurrent
// RemoveFile). Used by the indexer's cache-hit path to avoid a full
// LoadGraph scan per cached file.
func (s *Store) GetVertices(ids []string) ([]vertex.Vertex, error) {
	vertices := make([]vertex.Vertex, 0, len(ids))
	err := s.db.View(func(tx *bolt.Tx) error {
		nBucket := tx.Bucket(bucketN)
		for _, id := range ids {
			raw := nBucket.Get([]byte(id))
			if raw == nil {
				continue
			}
			var v vertex.Vertex
			if err := gobDecode(raw, &v); err != nil {
				return fmt.Errorf("%w: decode vertex %s: %v", cgerrors.ErrCorrupted, id, err)
			}
			vertices = append(vertices, v)
		}
		return nil
	})
	return vertices, err
}

// UpdateFile atomically replaces path's vertex set: any previously
// recorded ids for path are deleted from the n bucket, the new vertices
// are inserted, and f:<path>/m:<path> are overwritten, all within a
// single bbolt transaction.
func (s *Store) UpdateFile(path string, vertices []vertex.Vertex, mtimeSeconds int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		nBucket := tx.Bucket(bucketN)
		fBucket := tx.Bucket(bucketF)
		mBucket := tx.Bucket(bucketM)

		if raw := fBucket.Get([]byte(path)); raw != nil {
			var oldIDs []string
			if err := gobDecode(raw, &oldIDs); err != nil {
				return fmt.Errorf("%w: decode file index for %s: %v", cgerrors.ErrCorrupted, path, err)
			}
			for _, id := range oldIDs {
				if err := nBucket.Delete([]byte(id)); err != nil {
					return err
				}
			}
		}

		ids := make([]string, 0, len(vertices))
		for _, v := range vertices {
			raw, err := gobEncode(v)
			if err != nil {
				return fmt.Errorf("encode vertex %s: %w", v.ID, err)
			}
			if err := nBucket.Put([]byte(v.ID), raw); err != nil {
				return err
			}
			ids = append(ids, v.ID)
		}

		idsRaw, err := gobEncode(ids)
		if err != nil {
			return err
		}
		if err := fBucket.Put([]byte(path), idsRaw); err != nil {
			return err
		}

		mtimeRaw, err := gobEncode(mtimeSeconds)
		if err != nil {
			return err
		}
		return mBucket.Put([]byte(path), mtimeRaw)
	})
}

// RemoveFile atomically deletes path's vertices and its f:/m: entries.
func (s *Store) RemoveFile(path string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		nBucket := tx.Bucket(bucketN)
		fBucket := tx.Bucket(bucketF)
		mBucket := tx.Bucket(bucketM)

		raw := fBucket.Get([]byte(path))
		if raw != nil {
			var ids []string
			if err := gobDecode(raw, &ids); err != nil {
				return fmt.Errorf("%w: decode file index for %s: %v", cgerrors.ErrCorrupted, path, err)
			}
			for _, id := range ids {
				if err := nBucket.Delete([]byte(id)); err != nil {
					return err
				}
			}
		}

		if err := fBucket.Delete([]byte(path)); err != nil {
			return err
		}
		return mBucket.Delete([]byte(path))
	})
}

// ListCachedFiles returns every file path with a recorded entry.
func (s *Store) ListCachedFiles() ([]string, error) {
	var paths []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketF).ForEach(func(k, _ []byte) error {
			paths = append(paths, string(k))
			return nil
		})
	})
	return paths, err
}

// LoadGraph scans every n:<id> record, feeds them to a fresh
// graphbuild.Builder, and returns the resolved graph — a cold rebuild
// from the on-disk cache.
func (s *Store) LoadGraph() (*codegraph.Graph, error) {
	b := graphbuild.New(s.logger)

	var vertices []vertex.Vertex
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketN).ForEach(func(_, v []byte) error {
			var rec vertex.Vertex
			if err := gobDecode(v, &rec); err != nil {
				return fmt.Errorf("%w: decode vertex: %v", cgerrors.ErrCorrupted, err)
			}
			vertices = append(vertices, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	b.AddVertices(vertices)
	return b.Build(), nil
}

func gobEncode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gobDecode(raw []byte, out any) error {
	return gob.NewDecoder(bytes.NewReader(raw)).Decode(out)
}
