// Package cache persists fork metadata between runs in a bbolt database.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/grovetools/forksync/errors"
	"github.com/grovetools/forksync/pkg/models"
)

// SchemaVersion is written to the meta bucket on open.
const SchemaVersion = 1

// FileName is the database file name inside the cache directory.
const FileName = "forks.db"

var (
	forksBucket = []byte("forks")
	metaBucket  = []byte("meta")

	keySchemaVersion = []byte("schema_version")
	keyLastFullSync  = []byte("last_full_sync")
)

// record is the stored form of a fork. Local path and clone state are
// derived at load time and never stored.
type record struct {
	Owner         string     `json:"owner"`
	Name          string     `json:"name"`
	ParentOwner   string     `json:"parent_owner"`
	ParentName    string     `json:"parent_name"`
	DefaultBranch string     `json:"default_branch"`
	Description   string     `json:"description,omitempty"`
	Language      string     `json:"language,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	FetchedAt     time.Time  `json:"fetched_at"`
}

// Store is the fork metadata cache.
type Store struct {
	db   *bolt.DB
	path string
}

// Open opens or creates the cache at path. A second process holding the
// database makes Open fail after a short timeout.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.CacheUnavailable(path, err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.CacheUnavailable(path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{forksBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return tx.Bucket(metaBucket).Put(keySchemaVersion, []byte(strconv.Itoa(SchemaVersion)))
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.ErrCodeCacheCorrupt, "failed to initialize cache")
	}

	return &Store{db: db, path: path}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// LoadForks returns all cached forks, newest created first with unknown
// creation times last. Local paths are rebuilt under toolHome and clone
// state is checked on disk.
func (s *Store) LoadForks(toolHome string) ([]models.Fork, error) {
	var records []record
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(forksBucket).ForEach(func(k, v []byte) error {
			var r record
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("decode %s: %w", k, err)
			}
			records = append(records, r)
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheCorrupt, "failed to load forks")
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].CreatedAt, records[j].CreatedAt
		switch {
		case a == nil && b == nil:
			return records[i].Owner+"/"+records[i].Name < records[j].Owner+"/"+records[j].Name
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})

	forks := make([]models.Fork, len(records))
	for i, r := range records {
		forks[i] = models.Fork{
			Owner:         r.Owner,
			Name:          r.Name,
			ParentOwner:   r.ParentOwner,
			ParentName:    r.ParentName,
			DefaultBranch: r.DefaultBranch,
			LocalPath:     models.LocalPathFor(toolHome, r.Owner, r.Name),
			Description:   r.Description,
			Language:      r.Language,
			CreatedAt:     r.CreatedAt,
			UpdatedAt:     r.UpdatedAt,
		}.RefreshCloned()
	}
	return forks, nil
}

// SaveForks upserts forks keyed by owner/name.
func (s *Store) SaveForks(forks []models.Fork) error {
	now := time.Now().UTC()
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(forksBucket)
		for _, f := range forks {
			data, err := json.Marshal(record{
				Owner:         f.Owner,
				Name:          f.Name,
				ParentOwner:   f.ParentOwner,
				ParentName:    f.ParentName,
				DefaultBranch: f.DefaultBranch,
				Description:   f.Description,
				Language:      f.Language,
				CreatedAt:     f.CreatedAt,
				UpdatedAt:     f.UpdatedAt,
				FetchedAt:     now,
			})
			if err != nil {
				return err
			}
			if err := b.Put([]byte(f.Key()), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceForks makes the cache hold exactly forks.
func (s *Store) ReplaceForks(forks []models.Fork) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(forksBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(forksBucket)
		return err
	})
	if err != nil {
		return err
	}
	return s.SaveForks(forks)
}

// SaveFork upserts a single fork.
func (s *Store) SaveFork(f models.Fork) error {
	return s.SaveForks([]models.Fork{f})
}

// RemoveFork deletes owner/name from the cache.
func (s *Store) RemoveFork(owner, name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(forksBucket).Delete([]byte(owner + "/" + name))
	})
}

// HasFork reports whether owner/name is cached.
func (s *Store) HasFork(owner, name string) (bool, error) {
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(forksBucket).Get([]byte(owner+"/"+name)) != nil
		return nil
	})
	return found, err
}

// ForkCount returns the number of cached forks.
func (s *Store) ForkCount() (int, error) {
	n := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(forksBucket).Stats().KeyN
		return nil
	})
	return n, err
}

// IsEmpty reports whether no forks are cached.
func (s *Store) IsEmpty() (bool, error) {
	empty := true
	err := s.db.View(func(tx *bolt.Tx) error {
		k, _ := tx.Bucket(forksBucket).Cursor().First()
		empty = k == nil
		return nil
	})
	return empty, err
}

// LastFullSync returns when the full list was last fetched, or nil.
func (s *Store) LastFullSync() (*time.Time, error) {
	var when *time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(metaBucket).Get(keyLastFullSync)
		if v == nil {
			return nil
		}
		t, err := time.Parse(time.RFC3339Nano, string(v))
		if err != nil {
			// Unparseable timestamps read as "never synced".
			return nil
		}
		when = &t
		return nil
	})
	return when, err
}

// SetLastFullSync records when the full list was fetched.
func (s *Store) SetLastFullSync(when time.Time) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(metaBucket).Put(keyLastFullSync, []byte(when.UTC().Format(time.RFC3339Nano)))
	})
}

// Clear removes all forks and the last sync time.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(forksBucket); err != nil {
			return err
		}
		if _, err := tx.CreateBucket(forksBucket); err != nil {
			return err
		}
		return tx.Bucket(metaBucket).Delete(keyLastFullSync)
	})
}

// Info summarizes the cache for `forksync cache info`.
type Info struct {
	Path          string     `json:"path"`
	SizeBytes     int64      `json:"size_bytes"`
	Forks         int        `json:"forks"`
	LastFullSync  *time.Time `json:"last_full_sync,omitempty"`
	SchemaVersion int        `json:"schema_version"`
}

// Info returns a summary of the cache.
func (s *Store) Info() (Info, error) {
	info := Info{Path: s.path, SchemaVersion: SchemaVersion}

	n, err := s.ForkCount()
	if err != nil {
		return info, err
	}
	info.Forks = n

	if info.LastFullSync, err = s.LastFullSync(); err != nil {
		return info, err
	}

	err = s.db.View(func(tx *bolt.Tx) error {
		info.SizeBytes = tx.Size()
		if v := tx.Bucket(metaBucket).Get(keySchemaVersion); v != nil {
			if version, convErr := strconv.Atoi(string(v)); convErr == nil {
				info.SchemaVersion = version
			}
		}
		return nil
	})
	return info, err
}
