package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// explicitDates are tried in order; each captures an optional four-digit
// year, then month and day.
var explicitDates = []*regexp.Regexp{
	regexp.MustCompile(`(?:(\d{4})年)?(\d+)月(\d+)[號日]`),
	regexp.MustCompile(`(?:(\d{4})/)?(\d+)/(\d+)`),
	regexp.MustCompile(`(?:(\d{4})-)?(\d+)-(\d+)`),
}

// relativeWords is checked after explicit dates. 大後天 precedes 後天
// because it contains it.
var relativeWords = []struct {
	word string
	days int
}{
	{"大後天", 3},
	{"明天", 1},
	{"後天", 2},
}

// Due resolves the due date for text relative to now and formats it as
// "YYYY年MM月DD日(<annotation>)". It defaults to tomorrow.
func Due(text string, now time.Time) string {
	for _, re := range explicitDates {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			target, ok := explicitDate(m[1], m[2], m[3], now)
			if !ok {
				continue
			}
			return FormatDue(target, RelativeLabel(DaysBetween(now, target)))
		}
	}

	for _, r := range relativeWords {
		if strings.Contains(text, r.word) {
			return FormatDue(now.AddDate(0, 0, r.days), r.word)
		}
	}

	return FormatDue(now.AddDate(0, 0, 1), "明天")
}

// explicitDate builds month/day in the given year. Without a year it uses
// the current one, or the next when the month is already past. Impossible
// dates such as 2/30 are rejected.
func explicitDate(yearStr, monthStr, dayStr string, now time.Time) (time.Time, bool) {
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}

	year := now.Year()
	if yearStr != "" {
		if year, err = strconv.Atoi(yearStr); err != nil {
			return time.Time{}, false
		}
	} else if time.Month(month) < now.Month() {
		year++
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
	if t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// DaysBetween counts calendar days from from's date to to's date, both in
// from's location.
func DaysBetween(from, to time.Time) int {
	to = to.In(from.Location())
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// RelativeLabel annotates a day offset.
func RelativeLabel(days int) string {
	switch {
	case days == 0:
		return "今天"
	case days == 1:
		return "明天"
	case days == 2:
		return "後天"
	case days == 3:
		return "大後天"
	case days > 0:
		return fmt.Sprintf("%d天後", days)
	default:
		return fmt.Sprintf("%d天前", -days)
	}
}

// FormatDue renders a due date with its annotation.
func FormatDue(t time.Time, label string) string {
	return fmt.Sprintf("%d年%02d月%02d日(%s)", t.Year(), int(t.Month()), t.Day(), label)
}
