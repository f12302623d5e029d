package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"docstage/internal/domain"
)

var (
	bucketMeta = []byte("meta")
	kinds      = []domain.Kind{domain.KindLoaded, domain.KindChunked, domain.KindParsed}
)

// BoltStore keeps one bucket per artifact kind. Values carry the sequence of
// their last write so List can return names in insertion order.
type BoltStore struct {
	db *bbolt.DB
}

type record struct {
	Seq uint64          `json:"seq"`
	Raw json.RawMessage `json:"raw"`
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		buckets := [][]byte{bucketMeta}
		for _, k := range kinds {
			buckets = append(buckets, []byte(k))
		}
		for _, b := range buckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &BoltStore{db: db}
	if err := s.EnsureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func bucketFor(tx *bbolt.Tx, kind domain.Kind) (*bbolt.Bucket, error) {
	b := tx.Bucket([]byte(kind))
	if b == nil {
		return nil, fmt.Errorf("no artifact namespace for kind %q", kind)
	}
	return b, nil
}

func (s *BoltStore) Put(kind domain.Kind, name string, raw []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucketFor(tx, kind)
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		data, err := json.Marshal(record{Seq: seq, Raw: raw})
		if err != nil {
			return err
		}
		return b.Put([]byte(name), data)
	})
}

func (s *BoltStore) Get(kind domain.Kind, name string) ([]byte, error) {
	var raw []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucketFor(tx, kind)
		if err != nil {
			return err
		}
		data := b.Get([]byte(name))
		if data == nil {
			return fmt.Errorf("%w: %s %s", domain.ErrNotFound, kind, name)
		}
		var rec record
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		raw = append([]byte(nil), rec.Raw...)
		return nil
	})
	return raw, err
}

func (s *BoltStore) Delete(kind domain.Kind, name string) (bool, error) {
	existed := false
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucketFor(tx, kind)
		if err != nil {
			return err
		}
		existed = b.Get([]byte(name)) != nil
		return b.Delete([]byte(name))
	})
	return existed, err
}

func (s *BoltStore) List(kind domain.Kind) ([]string, error) {
	type entry struct {
		name string
		seq  uint64
	}
	var entries []entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucketFor(tx, kind)
		if err != nil {
			return err
		}
		return b.ForEach(func(k, v []byte) error {
			var rec record
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			entries = append(entries, entry{name: string(k), seq: rec.Seq})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names, nil
}

// NextChunkID reserves n consecutive chunk ids and returns the first one.
// Ids start at 1 and are never handed out twice, even across restarts.
func (s *BoltStore) NextChunkID(n int) (int, error) {
	var first int
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		last := 0
		if v := b.Get(keyChunkCounter); v != nil {
			last = int(binary.BigEndian.Uint64(v))
		}
		first = last + 1
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(last+n))
		return b.Put(keyChunkCounter, buf)
	})
	return first, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
