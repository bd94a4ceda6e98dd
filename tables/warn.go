package tables

import (
	"log"
	"sync"
)

// Warnings logs each key once. Missing data is looked up every tick; one
// line per key is enough. The zero value is ready to use.
type Warnings struct {
	seen sync.Map
}

// Once logs the message the first time key is seen and reports whether it
// did.
func (w *Warnings) Once(key string, format string, args ...any) bool {
	if w != nil {
		if _, loaded := w.seen.LoadOrStore(key, struct{}{}); loaded {
			return false
		}
	}
	log.Printf(format, args...)
	return true
}

// Reset forgets every key.
func (w *Warnings) Reset() {
	if w == nil {
		return
	}
	w.seen.Range(func(k, _ any) bool {
		w.seen.Delete(k)
		return true
	})
}

// WarnOnce logs a data problem once per key for this store.
func (s *Store) WarnOnce(key string, format string, args ...any) bool {
	if s == nil {
		return (*Warnings)(nil).Once(key, format, args...)
	}
	return s.warnings.Once(key, format, args...)
}

// ResetWarnings lets every key passed to WarnOnce log again.
func (s *Store) ResetWarnings() {
	if s != nil {
		s.warnings.Reset()
	}
}
