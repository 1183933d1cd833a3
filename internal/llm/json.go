package llm

import (
	"encoding/json"
	"strings"

	"readme_updater/internal/apperr"
)

// StripFences убирает обрамление ```json ... ```, которое модели часто добавляют к ответу.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// DecodeJSON разбирает JSON-ответ модели в out.
func DecodeJSON(content string, out any) error {
	if err := json.Unmarshal([]byte(StripFences(content)), out); err != nil {
		return &apperr.ProviderError{Provider: Provider, Kind: apperr.KindSchema, Err: err}
	}
	return nil
}
