package stores

import (
	"github.com/vango-dev/usershell/internal/errors"
	"github.com/vango-dev/usershell/pkg/reactive"
)

// Theme is the color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// DefaultTheme is used until a persisted choice is loaded.
const DefaultTheme = ThemeDark

// ParseTheme validates s.
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(s); t {
	case ThemeLight, ThemeDark:
		return t, nil
	}
	return "", errors.New("E002").WithDetail("got " + s)
}

// UnmarshalText rejects anything but light or dark.
func (t *Theme) UnmarshalText(text []byte) error {
	v, err := ParseTheme(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Palette is the design tokens for one theme.
type Palette struct {
	Algorithm           string
	Primary             string
	ContainerBackground string
	Text                string
	ButtonPrimary       string
}

var (
	lightPalette = Palette{
		Algorithm:           "default",
		Primary:             "#1677ff",
		ContainerBackground: "#ffffff",
		Text:                "rgba(0, 0, 0, 0.88)",
		ButtonPrimary:       "#1677ff",
	}
	darkPalette = Palette{
		Algorithm:           "dark",
		Primary:             "#1668dc",
		ContainerBackground: "#141414",
		Text:                "rgba(255, 255, 255, 0.85)",
	}
)

// PaletteFor returns the palette of t.
func PaletteFor(t Theme) Palette {
	if t == ThemeLight {
		return lightPalette
	}
	return darkPalette
}

// ThemeState is the persisted theme state.
type ThemeState struct {
	Theme Theme `json:"theme"`
}

// ThemeApplier receives the active theme after hydration and every change.
type ThemeApplier func(Theme)

// ThemeStore holds the light/dark choice.
type ThemeStore struct {
	view[ThemeState]

	config  *reactive.Computed[ThemeState, Palette]
	applier ThemeApplier
}

// NewThemeStore creates a theme store with the default theme. applier may
// be nil.
func NewThemeStore(applier ThemeApplier, opts ...reactive.Option) *ThemeStore {
	store := reactive.New("ThemeStore", ThemeState{Theme: DefaultTheme}, opts...)
	t := &ThemeStore{
		view:    view[ThemeState]{store: store},
		applier: applier,
		config: reactive.NewComputed(store, func(s ThemeState) Palette {
			return PaletteFor(s.Theme)
		}),
	}
	if applier != nil {
		store.Subscribe(func(s ThemeState) { applier(s.Theme) })
	}
	return t
}

// Theme returns the active theme.
func (t *ThemeStore) Theme() Theme {
	return t.Get().Theme
}

// Config returns the palette of the active theme.
func (t *ThemeStore) Config() Palette {
	return t.config.Get()
}

// Toggle switches between light and dark.
func (t *ThemeStore) Toggle() {
	t.store.Update("toggleTheme", func(s *ThemeState) {
		if s.Theme == ThemeLight {
			s.Theme = ThemeDark
		} else {
			s.Theme = ThemeLight
		}
	})
}

// Set selects theme, rejecting unknown values.
func (t *ThemeStore) Set(theme Theme) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}
	t.store.Update("setTheme", func(s *ThemeState) {
		s.Theme = theme
	})
	return nil
}

// Apply runs the applier with the current theme.
func (t *ThemeStore) Apply() {
	if t.applier != nil {
		t.applier(t.Theme())
	}
}
