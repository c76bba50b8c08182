package extract

import (
	"regexp"
	"strings"
)

// Task types.
const (
	TypeReport       = "報告"
	TypeHomework     = "作業"
	TypePresentation = "簡報"
	TypeOther        = "其他"
)

// nameRule maps an utterance to a name and type when match succeeds.
type nameRule struct {
	label string
	match func(text string) bool
	build func(text string) (name, typ string)
}

var (
	reportRun   = regexp.MustCompile(`([^，。！？\s]+)報告`)
	homeworkRun = regexp.MustCompile(`([^，。！？\s]+)作業`)
)

func fixed(name, typ string) func(string) (string, string) {
	return func(string) (string, string) { return name, typ }
}

func containsAny(subs ...string) func(string) bool {
	return func(text string) bool {
		for _, s := range subs {
			if strings.Contains(text, s) {
				return true
			}
		}
		return false
	}
}

// suffixed names the task after the run of characters before suffix.
func suffixed(re *regexp.Regexp, suffix, typ string) func(string) (string, string) {
	return func(text string) (string, string) {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1] + suffix, typ
		}
		return suffix, typ
	}
}

// nameRules is evaluated top to bottom. Order matters: "作業系統" must be
// tested before the generic 作業 rule, and keyword topics before either.
var nameRules = []nameRule{
	{"survey", containsAny("問卷"), fixed("行銷問卷報告", TypeReport)},
	{"agent", func(text string) bool {
		return strings.Contains(strings.ToLower(text), "agent")
	}, fixed("AI agent 報告", TypeReport)},
	{"os", containsAny("作業系統"), fixed("作業系統", TypeHomework)},
	{"project", containsAny("專題"), fixed("專題報告", TypeReport)},
	{"slides", containsAny("簡報", "ppt"), fixed("簡報製作", TypePresentation)},
	{"coding", containsAny("程式", "coding"), fixed("程式作業", TypeHomework)},
	{"report", containsAny("報告"), suffixed(reportRun, "報告", TypeReport)},
	{"homework", containsAny("作業"), suffixed(homeworkRun, "作業", TypeHomework)},
}

// NameAndType applies the name ladder. When no keyword rule matches the
// first whitespace-separated token names the task.
func NameAndType(text string) (name, typ string) {
	for _, r := range nameRules {
		if r.match(text) {
			return r.build(text)
		}
	}
	if fields := strings.Fields(text); len(fields) > 0 {
		return fields[0] + "作業", TypeOther
	}
	return "新作業", TypeOther
}
