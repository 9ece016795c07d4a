package blob

import (
	"fmt"
	"io/fs"
	"time"

	"go.etcd.io/bbolt"
)

var bucketSettings = []byte("settings")

// BoltStore keeps the payload under a name in a bbolt database, so several
// settings stores can share one database file. The encrypted payload is the
// value; bbolt adds nothing to the protection.
type BoltStore struct {
	db   *bbolt.DB
	name []byte
}

var _ Store = (*BoltStore)(nil)

// NewBoltStore opens the database at path, creating it if missing, and
// addresses the payload stored under name. Close releases the database.
func NewBoltStore(path, name string) (*BoltStore, error) {
	if name == "" {
		return nil, fmt.Errorf("payload name is required")
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSettings)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create settings bucket: %w", err)
	}
	return &BoltStore{db: db, name: []byte(name)}, nil
}

// Close releases the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Path returns the database location for display purposes.
func (s *BoltStore) Path() string {
	return s.db.Path()
}

// Name returns the payload name inside the database.
func (s *BoltStore) Name() string {
	return string(s.name)
}

func (s *BoltStore) Exists() (bool, error) {
	var ok bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		ok = tx.Bucket(bucketSettings).Get(s.name) != nil
		return nil
	})
	return ok, err
}

func (s *BoltStore) ReadAll() ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketSettings).Get(s.name)
		if v == nil {
			return fmt.Errorf("payload %q: %w", s.name, fs.ErrNotExist)
		}
		// Bucket values are only valid inside the transaction.
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BoltStore) WriteAll(data []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSettings).Put(s.name, data)
	})
}
