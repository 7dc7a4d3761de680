// Package prefs persists per-submitter language and currency history as
// most-recently-used lists, capped and deduplicated, so selection keyboards
// can lead with what the submitter actually uses.
package prefs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	bolt "go.etcd.io/bbolt"

	"github.com/avelichko/receipty/constants"
)

// Kind selects a preference list.
type Kind string

const (
	Languages  Kind = "languages"
	Currencies Kind = "currencies"
)

func (k Kind) defaults() []string {
	switch k {
	case Currencies:
		return constants.DefaultCurrencies
	default:
		return constants.DefaultLanguages
	}
}

// normalize canonicalizes a stored value; currency codes are upper-cased.
func (k Kind) normalize(v string) string {
	v = strings.TrimSpace(v)
	if k == Currencies {
		return strings.ToUpper(v)
	}
	return v
}

// Store is a bbolt-backed preference store. bbolt serializes writes through
// its single-writer transaction, which gives the last-write-wins contract
// without extra locking here.
type Store struct {
	db     *bolt.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the preference database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open prefs db %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, k := range []Kind{Languages, Currencies} {
			if _, err := tx.CreateBucketIfNotExists([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init prefs buckets: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Recent returns up to constants.MaxStoredPreferences values for the
// submitter, most recently used first, padded with the kind's defaults.
func (s *Store) Recent(kind Kind, submitterID int64) []string {
	stored := s.load(kind, submitterID)

	result := make([]string, 0, constants.MaxStoredPreferences)
	seen := map[string]struct{}{}
	push := func(v string) {
		v = kind.normalize(v)
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	for _, v := range stored {
		push(v)
	}
	for _, v := range kind.defaults() {
		push(v)
	}
	if len(result) > constants.MaxStoredPreferences {
		result = result[:constants.MaxStoredPreferences]
	}
	return result
}

// Touch records value as the submitter's most recent choice, deduplicating
// and capping the stored list.
func (s *Store) Touch(kind Kind, submitterID int64, value string) error {
	value = kind.normalize(value)
	if value == "" {
		return fmt.Errorf("empty preference value")
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(kind))
		key := []byte(strconv.FormatInt(submitterID, 10))

		var list []string
		if raw := b.Get(key); raw != nil {
			if err := json.Unmarshal(raw, &list); err != nil {
				s.logger.Warn("prefs.decode_failed", "kind", string(kind), "submitter_id", submitterID, "error", err)
				list = nil
			}
		}

		next := make([]string, 0, len(list)+1)
		next = append(next, value)
		for _, v := range list {
			if kind.normalize(v) != value {
				next = append(next, v)
			}
		}
		if len(next) > constants.MaxStoredPreferences {
			next = next[:constants.MaxStoredPreferences]
		}

		raw, err := json.Marshal(next)
		if err != nil {
			return err
		}
		return b.Put(key, raw)
	})
	if err != nil {
		return fmt.Errorf("touch %s preference: %w", kind, err)
	}
	s.logger.Debug("prefs.touched", "kind", string(kind), "submitter_id", submitterID, "value", value)
	return nil
}

func (s *Store) load(kind Kind, submitterID int64) []string {
	var list []string
	_ = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(kind))
		if raw := b.Get([]byte(strconv.FormatInt(submitterID, 10))); raw != nil {
			if err := json.Unmarshal(raw, &list); err != nil {
				list = nil
			}
		}
		return nil
	})
	return list
}
