// Package cache implements the shared key/value cache capability backed by
// BadgerDB. Both the rendered-page cache and the TMDB details cache store
// their entries here, each under its own key namespace, with per-entry TTLs
// enforced by Badger itself.
package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"
)

// Store is a thin wrapper over a Badger database exposing the get/set/expire
// contract consumed by the page loader and the TMDB client. Cache backend
// errors always propagate; there is no silent fallback path.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a Badger database rooted at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache at %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens an ephemeral in-memory store, used by tests.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory cache: %w", err)
	}
	return &Store{db: db}, nil
}

// Get returns the value stored under key. The second return value reports
// whether a live (non-expired) entry was found.
func (s *Store) Get(key string) ([]byte, bool, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}
	return out, true, nil
}

// Set stores value under key with the given TTL. A non-positive TTL stores
// the entry without expiry.
func (s *Store) Set(key string, value []byte, ttl time.Duration) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Expire resets the TTL of an existing entry by rewriting it with a fresh
// expiry. Expiring a missing key is a no-op.
func (s *Store) Expire(key string, ttl time.Duration) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return txn.SetEntry(badger.NewEntry([]byte(key), val).WithTTL(ttl))
	})
	if err != nil {
		return fmt.Errorf("cache expire %s: %w", key, err)
	}
	return nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		log.Error().Err(err).Msg("closing cache store")
		return err
	}
	return nil
}
