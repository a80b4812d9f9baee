package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language/display"

	"github.com/vango-dev/usershell/pkg/api"
	"github.com/vango-dev/usershell/pkg/i18n"
	"github.com/vango-dev/usershell/pkg/stores"
)

// printer renders store state in the active theme and language.
type printer struct {
	w  io.Writer
	r  *lipgloss.Renderer
	tr *i18n.Translator

	title  lipgloss.Style
	label  lipgloss.Style
	accent lipgloss.Style
}

func newPrinter(w io.Writer, tr *i18n.Translator) *printer {
	p := &printer{w: w, r: lipgloss.NewRenderer(w), tr: tr}
	p.applyTheme(stores.DefaultTheme)
	return p
}

// applyTheme restyles output for t. It is the ThemeStore applier.
func (p *printer) applyTheme(t stores.Theme) {
	palette := stores.PaletteFor(t)
	p.title = p.r.NewStyle().Bold(true).Foreground(lipgloss.Color(palette.Primary))
	p.label = p.r.NewStyle().Faint(true)
	p.accent = p.r.NewStyle().Foreground(lipgloss.Color(palette.Primary))
}

func (p *printer) line(s string) {
	fmt.Fprintln(p.w, s)
}

// success prints a translated confirmation.
func (p *printer) success(key string, args ...any) {
	p.line(p.accent.Render("✓") + " " + p.tr.T(key, args...))
}

func (p *printer) placeholder(s string) string {
	if s == "" {
		return p.tr.T(i18n.KeyEmptyPlaceholder)
	}
	return s
}

// profile prints u as an aligned label/value list.
func (p *printer) profile(u *api.UserInfo) {
	if u == nil {
		p.line(p.tr.T(i18n.KeyNotLoggedIn))
		return
	}

	rows := [][2]string{
		{p.tr.T(i18n.KeyProfileID), u.ID},
		{p.tr.T(i18n.KeyProfileUsername), u.Username},
		{p.tr.T(i18n.KeyProfileEmail), p.placeholder(u.Email)},
		{p.tr.T(i18n.KeyProfileRole), p.placeholder(u.Role)},
		{p.tr.T(i18n.KeyProfileAvatar), p.placeholder(u.Avatar)},
	}

	width := 0
	for _, row := range rows {
		width = max(width, lipgloss.Width(row[0]))
	}

	p.line(p.title.Render(p.tr.T(i18n.KeyProfileTitle)))
	for _, row := range rows {
		pad := strings.Repeat(" ", width-lipgloss.Width(row[0])+2)
		p.line("  " + p.label.Render(row[0]) + pad + row[1])
	}
}

// users prints one page of users as a table followed by the total.
func (p *printer) users(list *api.UserList) {
	header := []string{
		p.tr.T(i18n.KeyProfileID),
		p.tr.T(i18n.KeyProfileUsername),
		p.tr.T(i18n.KeyProfileEmail),
		p.tr.T(i18n.KeyProfileRole),
	}
	rows := make([][]string, 0, len(list.List))
	for _, u := range list.List {
		rows = append(rows, []string{u.ID, u.Username, p.placeholder(u.Email), p.placeholder(u.Role)})
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	p.line(p.label.Render(joinCells(header, widths)))
	for _, row := range rows {
		p.line(joinCells(row, widths))
	}
	p.line(p.tr.T(i18n.KeyUsersTotal, list.Total))
}

// joinCells pads every cell but the last to its column width.
func joinCells(cells []string, widths []int) string {
	var b strings.Builder
	for i, cell := range cells {
		b.WriteString(cell)
		if i < len(cells)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+2))
		}
	}
	return b.String()
}

func (p *printer) theme(t stores.Theme) {
	key := i18n.KeyThemeDark
	if t == stores.ThemeLight {
		key = i18n.KeyThemeLight
	}
	p.line(p.tr.T(i18n.KeyThemeCurrent, p.accent.Render(p.tr.T(key))))
}

func (p *printer) locale(l stores.Locale) {
	name := display.Self.Name(l.Tag())
	p.line(p.tr.T(i18n.KeyLocaleCurrent, p.accent.Render(name)))
}

func (p *printer) counter(c *stores.CounterStore) {
	p.line(p.tr.T(i18n.KeyCounterValue, c.Count(), c.DoubleCount()))

	changes := c.LastFiveChanges()
	history := p.tr.T(i18n.KeyEmptyPlaceholder)
	if len(changes) > 0 {
		parts := make([]string, len(changes))
		for i, v := range changes {
			parts[i] = strconv.Itoa(v)
		}
		history = strings.Join(parts, ", ")
	}
	p.line(p.tr.T(i18n.KeyCounterHistory, history))
}
