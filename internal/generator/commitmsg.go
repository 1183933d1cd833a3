package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"readme_updater/internal/llm"
	"readme_updater/internal/logger"
	"readme_updater/internal/models"
)

const maxCommitMessageLen = 72

// CommitTimeLayout - формат метки времени в начале сообщения коммита.
const CommitTimeLayout = "2006-01-02 15:04:05"

// FallbackMessages используются, когда модель недоступна.
var FallbackMessages = []string{
	"a shelf of tiny improvements 📚",
	"tea steam, mind clear 🍵",
	"misty sync at morning's edge 🌫️",
	"one sigh, one sync 💭",
	"crisp air, clean commits 🍂",
	"pages turned, updates saved 📖",
	"after the rain, a clean commit 🍃💾",
	"winter hush and one tidy save ❄️",
	"small lamp, long night, short diff 🕯️",
	"neon puddles and a fresh readme 🌃",
	"kettle on, notes in order 🫖",
	"quiet tide of little edits 🌊",
}

const commitSystemPrompt = `You write one short commit message for a personal notes repository that updates itself with the weather and a diary.

- under 10 words, lowercase, one or two emojis that fit the mood;
- inspired by the weather or the part of the day, or by a quiet inner theme (a memory, a song, a place, a game);
- different in wording and idea from the recent messages;
- no quotes, no trailing period, no explanations.

Examples of the style:
%s`

// CommitMessages придумывает сообщение коммита.
type CommitMessages struct {
	llm Completer
	log *logger.Entry
}

func NewCommitMessages(c Completer) *CommitMessages {
	return &CommitMessages{llm: c, log: logger.Component("commit_message")}
}

// Generate возвращает текст сообщения без метки времени. Никогда не падает:
// при сбое модели выбирается готовый пример, которого нет среди recent.
func (g *CommitMessages) Generate(ctx context.Context, weather *models.WeatherSnapshot, recent []string, now time.Time) string {
	if g.llm != nil {
		msg, err := g.fromModel(ctx, weather, recent, now)
		if err == nil {
			return msg
		}
		g.log.Warnf("Falling back to stock commit message: %v", err)
	}
	return FallbackMessage(recent, now)
}

func (g *CommitMessages) fromModel(ctx context.Context, weather *models.WeatherSnapshot, recent []string, now time.Time) (string, error) {
	prompt := "Part of day: " + PartOfDay(now.Hour())
	if weather != nil {
		prompt += "\nWeather: " + weather.Condition + fmt.Sprintf(", %.0f °C", weather.Temperature)
	}
	out, err := g.llm.Complete(ctx, llm.Request{
		System:      fmt.Sprintf(commitSystemPrompt, bulletList(FallbackMessages)),
		User:        prompt + "\n\nRecent messages:\n" + bulletList(recent),
		Temperature: 1.0,
	})
	if err != nil {
		return "", err
	}
	msg := normalizeCommitMessage(out)
	if msg == "" {
		return "", fmt.Errorf("unusable commit message %q", out)
	}
	return msg, nil
}

func normalizeCommitMessage(s string) string {
	s = strings.TrimSpace(strings.SplitN(cleanText(s), "\n", 2)[0])
	s = strings.TrimLeft(s, "-* ")
	s = strings.Trim(s, "\"'`")
	s = strings.TrimSuffix(s, ".")
	if r := []rune(s); len(r) > maxCommitMessageLen {
		s = strings.TrimSpace(string(r[:maxCommitMessageLen]))
	}
	return s
}

// FallbackMessage выбирает пример детерминированно по дню года, пропуская недавние.
func FallbackMessage(recent []string, now time.Time) string {
	used := make(map[string]bool, len(recent))
	for _, r := range recent {
		used[StripCommitTime(r)] = true
	}
	start := now.YearDay() + now.Hour()
	for i := range FallbackMessages {
		msg := FallbackMessages[(start+i)%len(FallbackMessages)]
		if !used[msg] {
			return msg
		}
	}
	return FallbackMessages[start%len(FallbackMessages)]
}

// FormatCommitMessage добавляет метку времени: "[2006-01-02 15:04:05] msg".
func FormatCommitMessage(msg string, now time.Time) string {
	return "[" + now.Format(CommitTimeLayout) + "] " + msg
}

// StripCommitTime убирает метку времени из темы коммита.
func StripCommitTime(subject string) string {
	if strings.HasPrefix(subject, "[") {
		if i := strings.Index(subject, "] "); i > 0 {
			return subject[i+2:]
		}
	}
	return subject
}
