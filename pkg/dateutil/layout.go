// Package dateutil formats and compares dates using dayjs-style layouts
// such as "YYYY-MM-DD HH:mm:ss".
package dateutil

import "strings"

// Common layouts.
const (
	DateLayout     = "YYYY-MM-DD"
	DateTimeLayout = "YYYY-MM-DD HH:mm:ss"
	TimeLayout     = "HH:mm:ss"
)

// tokens maps layout tokens to Go reference layouts, longest first.
var tokens = []struct {
	token string
	layout string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"dddd", "Monday"},
	{"MMM", "Jan"},
	{"ddd", "Mon"},
	{"SSS", "000"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"hh", "03"},
	{"mm", "04"},
	{"ss", "05"},
	{"ZZ", "-0700"},
	{"M", "1"},
	{"D", "2"},
	{"H", "15"},
	{"h", "3"},
	{"m", "4"},
	{"s", "5"},
	{"A", "PM"},
	{"a", "pm"},
	{"Z", "-07:00"},
}

// GoLayout converts a dayjs-style layout to a time.Format layout. Text in
// square brackets is copied literally.
func GoLayout(layout string) string {
	var b strings.Builder
	for i := 0; i < len(layout); {
		if layout[i] == '[' {
			if end := strings.IndexByte(layout[i:], ']'); end > 0 {
				b.WriteString(layout[i+1 : i+end])
				i += end + 1
				continue
			}
		}

		matched := false
		for _, t := range tokens {
			if strings.HasPrefix(layout[i:], t.token) {
				b.WriteString(t.layout)
				i += len(t.token)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(layout[i])
			i++
		}
	}
	return b.String()
}
