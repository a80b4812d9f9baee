package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ref = time.Date(2024, time.March, 14, 9, 5, 7, 0, time.UTC) // Thursday

func TestGoLayout(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"YYYY-MM-DD", "2006-01-02"},
		{"YYYY-MM-DD HH:mm:ss", "2006-01-02 15:04:05"},
		{"HH:mm:ss.SSS", "15:04:05.000"},
		{"D MMM YY h:mm A", "2 Jan 06 3:04 PM"},
		{"[Today is] dddd", "Today is Monday"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GoLayout(tt.in), tt.in)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "2024-03-14", Format(ref, ""))
	assert.Equal(t, "2024-03-14 09:05:07", FormatDateTime(ref))
	assert.Equal(t, "09:05:07", FormatTime(ref))
	assert.Equal(t, "14/3/2024", Format(ref, "D/M/YYYY"))
	assert.Equal(t, "", FormatDateTime(time.Time{}))
}

func TestRanges(t *testing.T) {
	day := time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, day, Today(ref))
	assert.Equal(t, day.AddDate(0, 0, -1), Yesterday(ref))

	monday := ThisWeek(ref, WeekStart("zh-cn"))
	assert.Equal(t, time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC), monday.Start)
	assert.Equal(t, time.Date(2024, time.March, 17, 23, 59, 59, 999999999, time.UTC), monday.End)

	sunday := ThisWeek(ref, WeekStart("en"))
	assert.Equal(t, time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), sunday.Start)
	assert.Equal(t, time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC), LastWeek(ref, time.Sunday).Start)

	feb := LastMonth(ref)
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), feb.Start)
	assert.Equal(t, 29, feb.End.Day())
	assert.Equal(t, 31, ThisMonth(ref).End.Day())

	year := ThisYear(ref)
	assert.True(t, year.Contains(ref))
	assert.Equal(t, time.December, year.End.Month())

	recent := RecentDays(ref, 7)
	assert.Equal(t, time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC), recent.Start)
	assert.Equal(t, time.Date(2024, time.March, 7, 0, 0, 0, 0, time.UTC), DateRange(ref, 7).Start)
}

func TestComparisons(t *testing.T) {
	assert.True(t, IsSameDay(ref, ref.Add(10*time.Hour)))
	assert.False(t, IsSameDay(ref, ref.Add(15*time.Hour)))
	assert.True(t, IsSameMonth(ref, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)))

	jan31 := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 43, Diff(ref, jan31, Day))
	assert.Equal(t, -43, Diff(jan31, ref, Day))
	assert.Equal(t, 1, Diff(ref, jan31, Month))
	assert.Equal(t, 0, Diff(ref, jan31, Year))
	assert.Equal(t, 2, Diff(ref, time.Date(2022, time.March, 14, 0, 0, 0, 0, time.UTC), Year))
	assert.Equal(t, 1, Diff(ref, time.Date(2022, time.March, 15, 0, 0, 0, 0, time.UTC), Year))
}

func TestParse(t *testing.T) {
	got, err := Parse("14/03/2024 09:05", "DD/MM/YYYY HH:mm")
	require.NoError(t, err)
	assert.Equal(t, 14, got.Day())
	assert.Equal(t, 5, got.Minute())

	_, err = Parse("2024-03-14", "")
	assert.NoError(t, err)
	_, err = Parse("yesterday", "")
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = Parse("31/31/2024", "DD/MM/YYYY")
	assert.ErrorIs(t, err, ErrInvalidDate)

	assert.True(t, IsValid("2024-03-14 09:05:07"))
	assert.False(t, IsValid(""))

	assert.Equal(t, ref.Unix(), Unix(FromUnix(ref.Unix())))
}

func TestRelativeTo(t *testing.T) {
	assert.Equal(t, "3 hours ago", RelativeTo(ref.Add(-3*time.Hour), ref, "en"))
	assert.Equal(t, "3 小时前", RelativeTo(ref.Add(-3*time.Hour), ref, "zh-cn"))
	assert.Equal(t, "2 天后", RelativeTo(ref.Add(50*time.Hour), ref, "zh-cn"))
	assert.Equal(t, "刚刚", RelativeTo(ref, ref, "zh-cn"))
}
