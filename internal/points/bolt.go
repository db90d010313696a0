package points

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Storage names inside the bbolt file.
const (
	BucketName = "ghboard"
	StateKey   = "pointsSystem"
)

// BoltRepository stores the points state as a JSON blob in a bbolt file.
type BoltRepository struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the bbolt file and ensures the bucket exists.
func Open(path string) (*BoltRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create points directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open points db: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BucketName))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &BoltRepository{db: db, bucket: []byte(BucketName)}, nil
}

// Load returns the saved state; ok is false when nothing has been saved yet.
func (r *BoltRepository) Load() (State, bool, error) {
	if r == nil || r.db == nil {
		return State{}, false, bolt.ErrDatabaseNotOpen
	}
	var (
		state State
		found bool
	)
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(r.bucket).Get([]byte(StateKey))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &state)
	})
	if err != nil {
		return State{}, false, err
	}
	return state, found, nil
}

// Save overwrites the stored state.
func (r *BoltRepository) Save(state State) error {
	if r == nil || r.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(r.bucket).Put([]byte(StateKey), payload)
	})
}

// Close releases the database file lock.
func (r *BoltRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}
