package project

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rotblauer/trkgeo/params"
	"github.com/rotblauer/trkgeo/types/item"
	"go.etcd.io/bbolt"
)

var (
	metaKey     = []byte("meta")
	itemsBucket = []byte("items")
)

// meta is what a project stores besides its items.
type meta struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserFocus string    `json:"user_focus"`
	Saved     time.Time `json:"saved"`
}

// Store persists projects in a bbolt database, one nested bucket per project name.
// Items are stored as their raw data, in order; they are derived again when loaded.
type Store struct {
	DB *bbolt.DB
}

// OpenStore opens (or creates) the store at path.
// A writable store holds a file lock; a second writer waits for it, up to a second.
func OpenStore(path string, readOnly bool) (*Store, error) {
	if !readOnly {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, err
		}
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{
		ReadOnly: readOnly,
		Timeout:  time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	return &Store{DB: db}, nil
}

// DefaultStorePath is the store under the data directory.
func DefaultStorePath() string {
	return filepath.Join(params.DatadirRoot, params.ProjectsDBName)
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// Save writes p, replacing any project stored under the same name.
func (s *Store) Save(p *Project) error {
	if p.Name == "" {
		return fmt.Errorf("save project: empty name")
	}
	m := meta{ID: p.ID, Name: p.Name, UserFocus: p.UserFocus(), Saved: time.Now()}
	mb, err := json.Marshal(m)
	if err != nil {
		return err
	}
	items := p.Items()
	encoded := make([][]byte, 0, len(items))
	for _, it := range items {
		b, err := item.Marshal(it)
		if err != nil {
			return fmt.Errorf("save project %q: item %q: %w", p.Name, it.Key(), err)
		}
		encoded = append(encoded, b)
	}

	err = s.DB.Update(func(tx *bbolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(params.ProjectsBucket)
		if err != nil {
			return err
		}
		name := []byte(p.Name)
		if root.Bucket(name) != nil {
			if err := root.DeleteBucket(name); err != nil {
				return err
			}
		}
		pb, err := root.CreateBucket(name)
		if err != nil {
			return err
		}
		if err := pb.Put(metaKey, mb); err != nil {
			return err
		}
		ib, err := pb.CreateBucket(itemsBucket)
		if err != nil {
			return err
		}
		// Keys sort, so zero-padded positions keep the item order.
		for i, b := range encoded {
			if err := ib.Put([]byte(fmt.Sprintf("%08d", i)), b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save project %q: %w", p.Name, err)
	}
	slog.Debug("Saved project", "name", p.Name, "items", len(encoded))
	return nil
}

// Load reads the project stored under name, deriving its items.
func (s *Store) Load(name string) (*Project, error) {
	var m meta
	var items []item.Item
	err := s.DB.View(func(tx *bbolt.Tx) error {
		root := tx.Bucket(params.ProjectsBucket)
		if root == nil {
			return ErrNotFound
		}
		pb := root.Bucket([]byte(name))
		if pb == nil {
			return ErrNotFound
		}
		// Values are only valid in the scope of the transaction;
		// decoding copies what it needs.
		if err := json.Unmarshal(pb.Get(metaKey), &m); err != nil {
			return fmt.Errorf("meta: %w", err)
		}
		ib := pb.Bucket(itemsBucket)
		if ib == nil {
			return nil
		}
		return ib.ForEach(func(k, v []byte) error {
			it, err := item.Unmarshal(v)
			if err != nil {
				return fmt.Errorf("item %s: %w", k, err)
			}
			items = append(items, it)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load project %q: %w", name, err)
	}

	p := New(m.Name)
	p.ID = m.ID
	for _, it := range items {
		p.Add(it)
	}
	if m.UserFocus != "" {
		if err := p.SetUserFocus(m.UserFocus); err != nil {
			slog.Warn("Stored user focus is gone", "project", name, "key", m.UserFocus)
		}
	}
	return p, nil
}

// List returns the names of the stored projects, sorted.
func (s *Store) List() ([]string, error) {
	names := []string{}
	err := s.DB.View(func(tx *bbolt.Tx) error {
		root := tx.Bucket(params.ProjectsBucket)
		if root == nil {
			return nil
		}
		return root.ForEach(func(k, v []byte) error {
			// Nested buckets have nil values.
			if v == nil {
				names = append(names, string(k))
			}
			return nil
		})
	})
	return names, err
}

// Delete removes the project stored under name.
func (s *Store) Delete(name string) error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		root := tx.Bucket(params.ProjectsBucket)
		if root == nil || root.Bucket([]byte(name)) == nil {
			return fmt.Errorf("delete project %q: %w", name, ErrNotFound)
		}
		return root.DeleteBucket([]byte(name))
	})
}
