// Package i18n holds the widget's translated strings and the active language.
package i18n

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

type Language string

const (
	English    = Language("en")
	Portuguese = Language("pt")
	Spanish    = Language("es")
	French     = Language("fr")
	German     = Language("de")

	DefaultLanguage = English
)

// Languages lists the supported languages in display order
var Languages = []Language{English, Spanish, Portuguese, French, German}

// Supported reports whether lang has a dictionary
func Supported(lang Language) bool {
	_, ok := languageNames[lang]
	return ok
}

// Parse normalises a language tag such as "pt-PT" to a supported language
func Parse(tag string) (Language, bool) {
	primary := strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(primary, "-_"); i >= 0 {
		primary = primary[:i]
	}
	lang := Language(primary)
	return lang, Supported(lang)
}

// Negotiate picks the first supported language from an Accept-Language header
func Negotiate(acceptLanguage string) Language {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag, _, _ := strings.Cut(part, ";")
		if lang, ok := Parse(tag); ok {
			return lang
		}
	}
	return DefaultLanguage
}

// Name returns the English name of lang, used when instructing the model
func Name(lang Language) string {
	if name, ok := languageNames[lang]; ok {
		return name
	}
	return languageNames[English]
}

// T translates key. Missing translations fall back to English and unknown keys
// are returned unchanged.
func T(lang Language, key string) string {
	set, ok := texts[key]
	if !ok {
		return key
	}
	return set.Text(lang)
}

// Suggestions returns a copy of the suggestion list for lang, nil when lang is unsupported
func Suggestions(lang Language) []string {
	list, ok := suggestions[lang]
	if !ok {
		return nil
	}
	return append([]string(nil), list...)
}

// Persister saves a preference across sessions
type Persister interface {
	Persist(key, value string) error
}

// Store holds the active language
type Store struct {
	mu        sync.RWMutex
	language  Language
	persister Persister
	logger    *zap.Logger
}

// NewStore creates a store. Unsupported languages start as English.
func NewStore(lang Language, persister Persister, logger *zap.Logger) *Store {
	if !Supported(lang) {
		lang = DefaultLanguage
	}
	return &Store{language: lang, persister: persister, logger: logger}
}

func (s *Store) Language() Language {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

// Set changes the active language. Unsupported languages are rejected and the
// current language is kept.
func (s *Store) Set(lang Language) bool {
	if !Supported(lang) {
		return false
	}

	s.mu.Lock()
	s.language = lang
	s.mu.Unlock()

	if s.persister != nil {
		if err := s.persister.Persist("language", string(lang)); err != nil {
			s.logger.Debug("Failed to persist language", zap.String("language", string(lang)), zap.Error(err))
		}
	}
	return true
}

// T translates key into the active language
func (s *Store) T(key string) string {
	return T(s.Language(), key)
}
