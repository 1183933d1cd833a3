package generator

import (
	"context"
	_ "embed"
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"readme_updater/internal/llm"
)

// Completer - модель, которая отвечает текстом на запрос.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

//go:embed persona.md
var defaultPersona string

// LoadPersona читает описание персонажа из файла или возвращает встроенное.
func LoadPersona(path string) (string, error) {
	if path == "" {
		return defaultPersona, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read persona: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("persona file %s is empty", path)
	}
	return string(data), nil
}

var textPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("br")
	return p
}()

// cleanText убирает из ответа модели HTML-разметку, кроме <br>.
func cleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

// bulletList оформляет строки как markdown-список для промпта.
func bulletList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		b.WriteString("- ")
		b.WriteString(strings.ReplaceAll(it, "\n", " "))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
