package store

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
)

// CurrentSchemaVersion is the current schema version.
// Increment this when making breaking changes to the storage format.
const CurrentSchemaVersion = 1

var (
	keySchemaVersion = []byte("schema_version")
	keyChunkCounter  = []byte("chunk_counter")
)

// SchemaInfo stores the schema version.
type SchemaInfo struct {
	Version int `json:"version"`
}

// GetSchemaInfo retrieves the current schema info from the database.
func (s *BoltStore) GetSchemaInfo() (*SchemaInfo, error) {
	var info SchemaInfo
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		if b == nil {
			return nil
		}
		if data := b.Get(keySchemaVersion); data != nil {
			if err := json.Unmarshal(data, &info.Version); err != nil {
				return fmt.Errorf("corrupt schema version: %w", err)
			}
		}
		return nil
	})
	return &info, err
}

// SetSchemaInfo stores the schema info in the database.
func (s *BoltStore) SetSchemaInfo(info *SchemaInfo) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(info.Version)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put(keySchemaVersion, data)
	})
}

// EnsureSchema stamps a fresh database and drops the artifacts of a database
// written with another schema version. The chunk id counter survives so ids
// are never reused.
func (s *BoltStore) EnsureSchema() error {
	info, err := s.GetSchemaInfo()
	if err != nil {
		return err
	}
	switch info.Version {
	case CurrentSchemaVersion:
		return nil
	case 0:
		if !s.empty() {
			if err := s.reset(); err != nil {
				return err
			}
		}
	default:
		if err := s.reset(); err != nil {
			return err
		}
	}
	return s.SetSchemaInfo(&SchemaInfo{Version: CurrentSchemaVersion})
}

func (s *BoltStore) empty() bool {
	empty := true
	_ = s.db.View(func(tx *bbolt.Tx) error {
		for _, k := range kinds {
			if b := tx.Bucket([]byte(k)); b != nil && b.Stats().KeyN > 0 {
				empty = false
			}
		}
		return nil
	})
	return empty
}

func (s *BoltStore) reset() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, k := range kinds {
			if err := tx.DeleteBucket([]byte(k)); err != nil && err != bbolt.ErrBucketNotFound {
				return err
			}
			if _, err := tx.CreateBucket([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}
