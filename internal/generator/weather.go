package generator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"readme_updater/internal/apperr"
	"readme_updater/internal/llm"
	"readme_updater/internal/models"
)

const narrativeSystemPrompt = `You add a short mood note to a weather report.

Reply with two lines:
1. an everyday title with one fitting emoji, e.g. "🌧️ rainy and quiet morning";
2. one or two soft, cozy sentences that match the weather and the part of the day.

No numbers, no lists, no markdown headings.`

// PartOfDay называет часть суток для часа hour (0-23).
func PartOfDay(hour int) string {
	switch {
	case hour >= 5 && hour < 8:
		return "early morning"
	case hour >= 8 && hour < 12:
		return "morning"
	case hour == 12:
		return "noon"
	case hour >= 13 && hour < 17:
		return "afternoon"
	case hour == 17:
		return "early evening"
	case hour >= 18 && hour < 21:
		return "evening"
	case hour >= 21 && hour < 23:
		return "late evening"
	default:
		return "night"
	}
}

// Narrator дописывает к погоде короткую заметку о настроении.
type Narrator struct {
	llm Completer
}

func NewNarrator(c Completer) *Narrator {
	return &Narrator{llm: c}
}

// Narrate возвращает заметку для snap. Сбой только лишает раздел заметки.
func (n *Narrator) Narrate(ctx context.Context, snap *models.WeatherSnapshot, now time.Time) (string, error) {
	if snap == nil {
		return "", nil
	}
	out, err := n.llm.Complete(ctx, llm.Request{
		System:      narrativeSystemPrompt,
		User:        fmt.Sprintf("Weather:\n%s\nPart of day: %s", describeWeather(snap), PartOfDay(now.Hour())),
		Temperature: 0.9,
	})
	if err != nil {
		return "", err
	}
	lines := strings.Split(cleanText(out), "\n")
	var kept []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		for _, br := range []string{"<br>", "<br/>", "<br />"} {
			l = strings.TrimSpace(strings.TrimSuffix(l, br))
		}
		if l != "" {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		return "", &apperr.ProviderError{Provider: "llm", Kind: apperr.KindEmpty, Err: apperr.ErrEmptyContent}
	}
	return strings.Join(kept, "\n"), nil
}

func describeWeather(s *models.WeatherSnapshot) string {
	var b strings.Builder
	line := func(name string, v *float64, unit string) {
		if v != nil {
			b.WriteString(name + ": " + strconv.FormatFloat(*v, 'f', -1, 64) + unit + "\n")
		}
	}
	b.WriteString("location: " + s.Location + "\n")
	b.WriteString("condition: " + s.Condition + "\n")
	line("temperature", &s.Temperature, " °C")
	line("feels like", s.FeelsLike, " °C")
	line("wind", s.WindSpeed, " m/s")
	line("humidity", s.Humidity, " %")
	line("cloud cover", s.CloudCover, " %")
	return b.String()
}
