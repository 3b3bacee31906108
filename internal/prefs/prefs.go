// Package prefs persists local UI preferences and the last session in a
// BadgerDB directory, independent of the remote service.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/dukerupert/listwise/internal/domain"
)

const (
	keyTheme      = "pref:theme"
	keyOnboarding = "pref:onboarding_seen"
	keySession    = "session:last"
)

type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens (or creates) the preference database in dir.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	opts.SyncWrites = true
	return open(opts, logger)
}

// OpenInMemory returns a Store that keeps nothing on disk.
func OpenInMemory(logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts, logger)
}

func open(opts badger.Options, logger *slog.Logger) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open prefs db: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Shutdown closes the store when the object graph is torn down.
func (s *Store) Shutdown() error {
	return s.Close()
}

func (s *Store) get(key string, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

func (s *Store) set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// Theme returns the saved theme, or system when none is saved.
func (s *Store) Theme() (domain.Theme, error) {
	var t domain.Theme
	err := s.get(keyTheme, &t)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.ThemeSystem, nil
	}
	if err != nil {
		return "", fmt.Errorf("get theme: %w", err)
	}
	return t, nil
}

func (s *Store) SetTheme(t domain.Theme) error {
	if !t.Valid() {
		return fmt.Errorf("unknown theme %q", t)
	}
	if err := s.set(keyTheme, t); err != nil {
		return fmt.Errorf("set theme: %w", err)
	}
	return nil
}

func (s *Store) HasSeenOnboarding() (bool, error) {
	var seen bool
	err := s.get(keyOnboarding, &seen)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get onboarding flag: %w", err)
	}
	return seen, nil
}

func (s *Store) SetHasSeenOnboarding(seen bool) error {
	if err := s.set(keyOnboarding, seen); err != nil {
		return fmt.Errorf("set onboarding flag: %w", err)
	}
	return nil
}

// Session returns the last saved session, or nil.
func (s *Store) Session() (*domain.Session, error) {
	var sess domain.Session
	err := s.get(keySession, &sess)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &sess, nil
}

// SaveSession stores sess, or removes the saved session when sess is nil.
func (s *Store) SaveSession(sess *domain.Session) error {
	if sess == nil {
		err := s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete([]byte(keySession))
		})
		if err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		return nil
	}
	if err := s.set(keySession, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// TrackSession keeps the saved session in step with auth events.
func (s *Store) TrackSession(ev domain.AuthEvent) {
	if err := s.SaveSession(ev.Session); err != nil {
		s.logger.Warn("persist session", "event", ev.Type, "error", err)
	}
}
