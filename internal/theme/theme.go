// Package theme holds the light/dark preference.
package theme

import (
	"sync"

	"go.uber.org/zap"
)

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"

	// CookieName is the cookie the web widget stores the preference in
	CookieName = "theme"
	// HeaderName is the response header mirroring the preference
	HeaderName = "x-theme"
)

// Parse maps a stored value to a theme. Anything but "dark" is light.
func Parse(value string) Theme {
	if value == string(Dark) {
		return Dark
	}
	return Light
}

// Persister saves a preference across sessions
type Persister interface {
	Persist(key, value string) error
}

// Store holds the active theme
type Store struct {
	mu        sync.RWMutex
	theme     Theme
	persister Persister
	logger    *zap.Logger
}

func NewStore(initial Theme, persister Persister, logger *zap.Logger) *Store {
	return &Store{theme: Parse(string(initial)), persister: persister, logger: logger}
}

func (s *Store) Theme() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

func (s *Store) Dark() bool {
	return s.Theme() == Dark
}

func (s *Store) Set(t Theme) {
	t = Parse(string(t))
	s.mu.Lock()
	s.theme = t
	s.mu.Unlock()

	if s.persister != nil {
		if err := s.persister.Persist("theme", string(t)); err != nil {
			s.logger.Debug("Failed to persist theme", zap.String("theme", string(t)), zap.Error(err))
		}
	}
}

// Toggle flips between light and dark and returns the new theme
func (s *Store) Toggle() Theme {
	next := Dark
	if s.Dark() {
		next = Light
	}
	s.Set(next)
	return next
}
