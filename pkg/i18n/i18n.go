// Package i18n translates the shell's user-facing strings into the
// language selected in the locale store.
package i18n

import (
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/vango-dev/usershell/pkg/stores"
)

// Fallback is the language used for unsupported tags.
var Fallback = language.SimplifiedChinese

// NewCatalog builds the zh/en catalog.
func NewCatalog() (catalog.Catalog, error) {
	b := catalog.NewBuilder(catalog.Fallback(Fallback))
	for tag, entries := range messages {
		for key, msg := range entries {
			if err := b.SetString(tag, key, msg); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}

// Translator formats messages in its current language.
type Translator struct {
	cat     catalog.Catalog
	matcher language.Matcher

	mu      sync.RWMutex
	lang    language.Tag
	printer *message.Printer
}

// New returns a translator for tag.
func New(tag language.Tag) (*Translator, error) {
	cat, err := NewCatalog()
	if err != nil {
		return nil, err
	}
	t := &Translator{
		cat:     cat,
		matcher: language.NewMatcher(append([]language.Tag{Fallback}, cat.Languages()...)),
	}
	t.SetLanguage(tag)
	return t, nil
}

// SetLanguage switches to the closest supported language.
func (t *Translator) SetLanguage(tag language.Tag) {
	matched, _, _ := t.matcher.Match(tag)
	base, _ := matched.Base()
	resolved := Fallback
	for _, supported := range t.cat.Languages() {
		if b, _ := supported.Base(); b == base {
			resolved = supported
			break
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.lang = resolved
	t.printer = message.NewPrinter(resolved, message.Catalog(t.cat))
}

// Language returns the active language.
func (t *Translator) Language() language.Tag {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lang
}

// T formats the message for key. Unknown keys are returned as-is.
func (t *Translator) T(key string, args ...any) string {
	t.mu.RLock()
	p := t.printer
	t.mu.RUnlock()
	return p.Sprintf(key, args...)
}

// SyncLocale keeps tr in the language of ls, starting now.
func SyncLocale(ls *stores.LocaleStore, tr *Translator) (stop func()) {
	tr.SetLanguage(ls.Tag())
	return ls.Subscribe(func(s stores.LocaleState) {
		if tag := s.Locale.Tag(); tag != tr.Language() {
			tr.SetLanguage(tag)
		}
	})
}
