package stores

import (
	"golang.org/x/text/language"

	"github.com/vango-dev/usershell/internal/errors"
	"github.com/vango-dev/usershell/pkg/reactive"
)

// Locale is the UI language.
type Locale string

const (
	LocaleZH Locale = "zh"
	LocaleEN Locale = "en"
)

// DefaultLocale is used until a persisted choice is loaded.
const DefaultLocale = LocaleZH

// ParseLocale validates s.
func ParseLocale(s string) (Locale, error) {
	switch l := Locale(s); l {
	case LocaleZH, LocaleEN:
		return l, nil
	}
	return "", errors.New("E003").WithDetail("got " + s)
}

// UnmarshalText rejects anything but zh or en.
func (l *Locale) UnmarshalText(text []byte) error {
	v, err := ParseLocale(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Tag returns the language tag of l.
func (l Locale) Tag() language.Tag {
	if l == LocaleEN {
		return language.English
	}
	return language.SimplifiedChinese
}

// DateLocale returns the date library locale name of l.
func (l Locale) DateLocale() string {
	if l == LocaleEN {
		return "en"
	}
	return "zh-cn"
}

// LocaleState is the persisted locale state.
type LocaleState struct {
	Locale Locale `json:"locale"`
}

// LocaleStore holds the zh/en choice.
type LocaleStore struct {
	view[LocaleState]

	tag        *reactive.Computed[LocaleState, language.Tag]
	dateLocale *reactive.Computed[LocaleState, string]
}

// NewLocaleStore creates a locale store with the default locale.
func NewLocaleStore(opts ...reactive.Option) *LocaleStore {
	store := reactive.New("LocaleStore", LocaleState{Locale: DefaultLocale}, opts...)
	return &LocaleStore{
		view: view[LocaleState]{store: store},
		tag: reactive.NewComputed(store, func(s LocaleState) language.Tag {
			return s.Locale.Tag()
		}),
		dateLocale: reactive.NewComputed(store, func(s LocaleState) string {
			return s.Locale.DateLocale()
		}),
	}
}

// Locale returns the active locale.
func (l *LocaleStore) Locale() Locale {
	return l.Get().Locale
}

// Tag returns the language tag of the active locale.
func (l *LocaleStore) Tag() language.Tag {
	return l.tag.Get()
}

// DateLocale returns the date locale name of the active locale.
func (l *LocaleStore) DateLocale() string {
	return l.dateLocale.Get()
}

// Toggle switches between zh and en.
func (l *LocaleStore) Toggle() {
	l.store.Update("toggleLocale", func(s *LocaleState) {
		if s.Locale == LocaleZH {
			s.Locale = LocaleEN
		} else {
			s.Locale = LocaleZH
		}
	})
}

// Set selects locale, rejecting unknown values.
func (l *LocaleStore) Set(locale Locale) error {
	if _, err := ParseLocale(string(locale)); err != nil {
		return err
	}
	l.store.Update("setLocale", func(s *LocaleState) {
		s.Locale = locale
	})
	return nil
}
