package survey

import (
	"fmt"
	"strings"
)

// Band is a severity tier for one summed sub-score.
type Band int

const (
	BandLow Band = iota
	BandWatch
	BandSeekHelp
)

func (b Band) String() string {
	switch b {
	case BandWatch:
		return "watch"
	case BandSeekHelp:
		return "seek_help"
	default:
		return "low"
	}
}

// BandFor classifies a sub-score: ≤1 low, 2–3 watch, ≥4 seek help.
func BandFor(score int) Band {
	switch {
	case score <= 1:
		return BandLow
	case score <= 3:
		return BandWatch
	default:
		return BandSeekHelp
	}
}

var depressionLines = map[Band]string{
	BandLow:      "你的情緒狀態良好，沒有明顯的憂鬱傾向 😊",
	BandWatch:    "雖然還沒到憂鬱傾向，但該提醒自己要留意了 ⚠️",
	BandSeekHelp: "建議尋求專業心理諮商協助 💙",
}

var anxietyLines = map[Band]string{
	BandLow:      "你的焦慮感應該極低，代表你很好地掌握了生活和工作節奏 🌟",
	BandWatch:    "有些許焦慮，建議學習放鬆技巧 🧘‍♀️",
	BandSeekHelp: "焦慮程度較高，建議尋求專業協助 🆘",
}

const recommendation = "努力讓自己的生活作息規律、適當運動、增加 Omega-3 或維生素B群、D攝取、" +
	"充足睡眠，或是與好友一起踏青等等，都可以讓自己的心情轉向晴天喔 ☀️\n\n" +
	"建議你可以多多利用還道舒心，每天調理讓你更輕鬆掌握自己 💝"

// Report is the scored outcome of a finished survey.
type Report struct {
	Depression     int
	Anxiety        int
	DepressionBand Band
	AnxietyBand    Band
	Text           string
}

// Score computes the report for a complete answer set. The first two
// answers form the depression score, the last two the anxiety score.
func Score(answers []int) (*Report, error) {
	if len(answers) != QuestionCount {
		return nil, fmt.Errorf("scoring %d answers, want %d", len(answers), QuestionCount)
	}
	for i, a := range answers {
		if !ValidValue(a) {
			return nil, fmt.Errorf("answer %d out of range: %d: %w", i, a, ErrInvalidAnswer)
		}
	}

	r := &Report{
		Depression: answers[0] + answers[1],
		Anxiety:    answers[2] + answers[3],
	}
	r.DepressionBand = BandFor(r.Depression)
	r.AnxietyBand = BandFor(r.Anxiety)
	r.Text = reportText(r.DepressionBand, r.AnxietyBand)
	return r, nil
}

func reportText(dep, anx Band) string {
	var b strings.Builder
	b.WriteString("📊 情緒檢測結果\n\n")
	b.WriteString("• 憂鬱方面：" + depressionLines[dep] + "\n")
	b.WriteString("• 焦慮方面：" + anxietyLines[anx] + "\n")
	b.WriteString("\n💡 建議行動：\n")
	b.WriteString(recommendation)
	return b.String()
}
