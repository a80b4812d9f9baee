package dateutil

import (
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// zhMagnitudes mirrors humanize's default scale with Chinese wording.
var zhMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Second, Format: "刚刚", DivBy: time.Second},
	{D: 2 * time.Second, Format: "1 秒%s", DivBy: 1},
	{D: time.Minute, Format: "%d 秒%s", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "1 分钟%s", DivBy: 1},
	{D: time.Hour, Format: "%d 分钟%s", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "1 小时%s", DivBy: 1},
	{D: humanize.Day, Format: "%d 小时%s", DivBy: time.Hour},
	{D: 2 * humanize.Day, Format: "1 天%s", DivBy: 1},
	{D: humanize.Week, Format: "%d 天%s", DivBy: humanize.Day},
	{D: 2 * humanize.Week, Format: "1 周%s", DivBy: 1},
	{D: humanize.Month, Format: "%d 周%s", DivBy: humanize.Week},
	{D: 2 * humanize.Month, Format: "1 个月%s", DivBy: 1},
	{D: humanize.Year, Format: "%d 个月%s", DivBy: humanize.Month},
	{D: 18 * humanize.Month, Format: "1 年%s", DivBy: 1},
	{D: 2 * humanize.Year, Format: "2 年%s", DivBy: 1},
	{D: humanize.LongTime, Format: "%d 年%s", DivBy: humanize.Year},
	{D: math.MaxInt64, Format: "很久%s", DivBy: 1},
}

// FromNow describes t relative to the current time in the given date
// locale ("zh-cn" or "en").
func FromNow(t time.Time, dateLocale string) string {
	return RelativeTo(t, time.Now(), dateLocale)
}

// RelativeTo describes t relative to now, e.g. "3 hours ago" or "3 小时前".
func RelativeTo(t, now time.Time, dateLocale string) string {
	if dateLocale == "zh-cn" {
		return humanize.CustomRelTime(t, now, "前", "后", zhMagnitudes)
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
