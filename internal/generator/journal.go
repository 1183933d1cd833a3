package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"readme_updater/internal/apperr"
	"readme_updater/internal/llm"
	"readme_updater/internal/logger"
	"readme_updater/internal/models"
)

const (
	eventTemperature = 1.0
	entryTemperature = 0.7
)

const eventSystemPrompt = `You invent one small, believable moment from the life of the character described by the user.

Guidelines:
- Build the moment around one quiet idea: an unexpected connection, a small discovery, an old routine seen in a new light.
- Keep it ordinary in scale. No action scenes, no melodrama, physically plausible.
- Use at most three details from the character profile and do not force them together.
- Pick a different theme from the recent moments you are shown (home, city and weather, friends, memory, work, longing for nature).
- Cats behave like cats.
- Write 75-200 words, one paragraph, third person, present tense.

Reply with the moment only.`

const entrySystemPrompt = `You write a diary page in the voice of the character described by the user, based on the moment they give you.

Format:
- First line: a title of 3-6 words, lowercase, optionally followed by one emoji.
- Then an empty line and the entry itself.

The entry:
- first person, all lowercase, 100-200 words;
- calm and reflective, simple words, ellipses for trailing thoughts;
- write times as "2 AM", not in words;
- no sound words like "click-clack", avoid "hum", "ethereal" and "symphony";
- one or two emojis in total, and end with an emoji instead of a period;
- do not reuse openings, images or endings from the recent entries.

Reply with the title and the entry only.`

// Journal пишет дневниковую запись в два шага: сначала событие, потом текст записи.
type Journal struct {
	llm     Completer
	persona string
	log     *logger.Entry
}

func NewJournal(c Completer, persona string) *Journal {
	return &Journal{llm: c, persona: persona, log: logger.Component("journal")}
}

// Generate создает запись на дату date. previous - тексты предыдущих записей, от новых к старым.
// Любой сбой модели возвращается как *apperr.GenerationError.
func (j *Journal) Generate(ctx context.Context, date time.Time, previous []string) (*models.JournalEntry, error) {
	j.log.WithField("previous", len(previous)).Info("Generating journal entry")

	event, err := j.llm.Complete(ctx, llm.Request{
		System:      eventSystemPrompt,
		User:        fmt.Sprintf("Profile:\n%s\n\nRecent moments:\n%s", j.persona, bulletList(previous)),
		Temperature: eventTemperature,
	})
	if err != nil {
		return nil, &apperr.GenerationError{Stage: "journal event", Err: err}
	}
	event = cleanText(event)
	if event == "" {
		return nil, &apperr.GenerationError{Stage: "journal event", Err: apperr.ErrEmptyContent}
	}

	raw, err := j.llm.Complete(ctx, llm.Request{
		System: entrySystemPrompt,
		User: fmt.Sprintf("Profile:\n%s\n\nToday's moment:\n%s\n\nRecent entries:\n%s",
			j.persona, event, bulletList(previous)),
		Temperature: entryTemperature,
	})
	if err != nil {
		return nil, &apperr.GenerationError{Stage: "journal entry", Err: err}
	}

	title, body := ParseEntry(cleanText(raw))
	if body == "" {
		return nil, &apperr.GenerationError{Stage: "journal entry", Err: apperr.ErrEmptyContent}
	}
	return &models.JournalEntry{
		Date:    date,
		Title:   title,
		Body:    body,
		Event:   event,
		Persona: j.persona,
	}, nil
}

// ParseEntry отделяет заголовок (первая непустая строка) от текста записи.
// Если текст состоит из одного абзаца, заголовок пустой.
func ParseEntry(raw string) (title, body string) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "\r\n", "\n"))
	head, rest, found := strings.Cut(raw, "\n")
	if !found || strings.TrimSpace(rest) == "" {
		return "", raw
	}
	title = strings.TrimSpace(strings.Trim(strings.TrimSpace(head), "#*_ "))
	return title, strings.TrimSpace(rest)
}
