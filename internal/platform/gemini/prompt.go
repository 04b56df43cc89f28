package gemini

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"
	"unicode/utf8"
)

//go:embed prompts/daily_insight.tmpl
var dailyInsightTemplate string

// maxBodyRunes bounds each dream body quoted in a prompt.
const maxBodyRunes = 300

var dailyInsight = template.Must(template.New("daily_insight").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(dailyInsightTemplate))

// InsightDream is one dream quoted in the daily insight prompt.
type InsightDream struct {
	Date     time.Time
	Title    string
	Body     string
	Emotions []string
}

type promptDream struct {
	Date     string
	Title    string
	Body     string
	Emotions []string
}

// DailyInsightPrompt renders the daily insight prompt for dreams.
func DailyInsightPrompt(dreams []InsightDream) (string, error) {
	if len(dreams) == 0 {
		return "", ErrEmptyPrompt
	}
	data := struct{ Dreams []promptDream }{}
	for _, d := range dreams {
		data.Dreams = append(data.Dreams, promptDream{
			Date:     d.Date.Format("2006-01-02"),
			Title:    d.Title,
			Body:     truncateRunes(strings.TrimSpace(d.Body), maxBodyRunes),
			Emotions: d.Emotions,
		})
	}

	var buf bytes.Buffer
	if err := dailyInsight.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "…"
}
