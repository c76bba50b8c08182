package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultEffort is used when the utterance names no hour count.
const DefaultEffort = "2 小時"

const numeral = `(\d+|[一二三四五六七八九十]+)`

// effortRules keeps the alternatives in their matching order. The
// optional 大概/預計 lead-in is accepted by each of them.
var effortRules = []*regexp.Regexp{
	regexp.MustCompile(`(?:大概|預計)?\s*` + numeral + `\s*小時`),
	regexp.MustCompile(`(?:大概|預計)?\s*` + numeral + `\s*個小時`),
	regexp.MustCompile(`(?:大概|預計)?\s*` + numeral + `\s*個鐘頭`),
}

var chineseDigits = map[string]int{
	"一": 1, "二": 2, "三": 3, "四": 4, "五": 5,
	"六": 6, "七": 7, "八": 8, "九": 9,
}

// Effort returns the estimated time as "<N> 小時".
func Effort(text string) string {
	for _, re := range effortRules {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		hours := m[1]
		if n, ok := chineseNumber(hours); ok {
			hours = strconv.Itoa(n)
		} else if _, err := strconv.Atoi(hours); err != nil {
			continue
		}
		return fmt.Sprintf("%s 小時", hours)
	}
	return DefaultEffort
}

// chineseNumber reads 1..99 written as 三, 十, 十二, 二十 or 二十五.
func chineseNumber(s string) (int, bool) {
	tens, ones, hasTen := strings.Cut(s, "十")
	if !hasTen {
		return chineseDigits[s], chineseDigits[s] > 0
	}

	t, o := 1, 0
	if tens != "" {
		if t = chineseDigits[tens]; t == 0 {
			return 0, false
		}
	}
	if ones != "" {
		if o = chineseDigits[ones]; o == 0 {
			return 0, false
		}
	}
	return t*10 + o, true
}
