package usage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

var usageBucket = []byte("usage")

// BoltStore persists usage buckets in a bbolt database so quota
// accounting survives restarts. Keys are "<userID>:<day>".
type BoltStore struct {
	db   *bolt.DB
	path string
}

func OpenBoltStore(path string) (*BoltStore, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("usage store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
		return nil, fmt.Errorf("ensure usage store dir: %w", err)
	}
	db, err := bolt.Open(trimmed, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open usage store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(usageBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure usage bucket: %w", err)
	}
	return &BoltStore{db: db, path: trimmed}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Get(key Key) (Record, bool, error) {
	var record Record
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(usageBucket).Get(encodeKey(key))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &record)
	})
	if err != nil {
		return Record{}, false, fmt.Errorf("read usage bucket: %w", err)
	}
	return record, found, nil
}

func (s *BoltStore) Put(key Key, record Record) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode usage record: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(usageBucket).Put(encodeKey(key), raw)
	})
}

func (s *BoltStore) Keys() ([]Key, error) {
	var keys []Key
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(usageBucket).ForEach(func(k, _ []byte) error {
			key, ok := decodeKey(k)
			if ok {
				keys = append(keys, key)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list usage keys: %w", err)
	}
	return keys, nil
}

func (s *BoltStore) Delete(key Key) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(usageBucket).Delete(encodeKey(key))
	})
}

func encodeKey(key Key) []byte {
	return []byte(key.UserID + ":" + key.Day)
}

func decodeKey(raw []byte) (Key, bool) {
	idx := strings.LastIndexByte(string(raw), ':')
	if idx < 0 {
		return Key{}, false
	}
	return Key{UserID: string(raw[:idx]), Day: string(raw[idx+1:])}, true
}
