package ruleset

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/boltdb/bolt"
)

var rulesBucket = []byte("rules")

// BoltStore persists rules to a BoltDB file, one JSON document per rule
// keyed by name. Bolt keeps keys sorted, so List needs no extra ordering.
type BoltStore struct {
	db     *bolt.DB
	mu     sync.RWMutex
	closed bool
}

// NewBoltStore opens or creates the database file at path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rulesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Save implements Store.
func (b *BoltStore) Save(r Rule) (Rule, error) {
	if err := r.Validate(); err != nil {
		return Rule{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return Rule{}, ErrStoreClosed
	}

	var stored Rule
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(rulesBucket)
		key := []byte(r.Name)

		var existingID string
		if data := bucket.Get(key); data != nil {
			var existing Rule
			if err := json.Unmarshal(data, &existing); err != nil {
				return fmt.Errorf("decode rule %s: %w", r.Name, err)
			}
			existingID = existing.ID
		}

		stored = prepare(r, existingID)
		data, err := json.Marshal(stored)
		if err != nil {
			return fmt.Errorf("encode rule %s: %w", r.Name, err)
		}
		return bucket.Put(key, data)
	})
	if err != nil {
		return Rule{}, fmt.Errorf("save rule: %w", err)
	}
	return stored, nil
}

// Get implements Store.
func (b *BoltStore) Get(name string) (Rule, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return Rule{}, ErrStoreClosed
	}

	var (
		r     Rule
		found bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(rulesBucket).Get([]byte(name))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &r)
	})
	if err != nil {
		return Rule{}, fmt.Errorf("load rule: %w", err)
	}
	if !found {
		return Rule{}, ErrNotFound
	}
	return r, nil
}

// List implements Store.
func (b *BoltStore) List() ([]Rule, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, ErrStoreClosed
	}

	rules := []Rule{}
	err := b.db.View(func(tx *bolt.Tx) error {
		cur := tx.Bucket(rulesBucket).Cursor()
		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			var r Rule
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("decode rule %s: %w", k, err)
			}
			rules = append(rules, r)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	return rules, nil
}

// Delete implements Store.
func (b *BoltStore) Delete(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrStoreClosed
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(rulesBucket).Delete([]byte(name))
	})
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	return nil
}

// Close implements Store.
func (b *BoltStore) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	b.closed = true
	return b.db.Close()
}
