package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"readme_updater/internal/apperr"
)

const Provider = "llm"

// Request - один запрос к модели: системный промпт, пользовательский промпт и температура.
type Request struct {
	System      string
	User        string
	Temperature float64
}

// Client - клиент OpenAI-совместимого API chat completions.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

func NewClient(baseURL, apiKey, model string, httpClient *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    httpClient,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete отправляет запрос и возвращает текст первого варианта ответа.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	body := chatRequest{Model: c.model, Temperature: req.Temperature}
	if req.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.User})

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", &apperr.ProviderError{Provider: Provider, Kind: apperr.KindNetwork, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", apperr.NewProviderError(Provider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.NewProviderError(Provider, err)
	}

	var out chatResponse
	decodeErr := json.Unmarshal(raw, &out)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(raw))
		if decodeErr == nil && out.Error != nil {
			msg = out.Error.Message
		}
		return "", &apperr.ProviderError{Provider: Provider, Kind: apperr.KindStatus, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", msg)}
	}
	if decodeErr != nil {
		return "", &apperr.ProviderError{Provider: Provider, Kind: apperr.KindSchema, Err: decodeErr}
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == nil {
		return "", &apperr.ProviderError{Provider: Provider, Kind: apperr.KindSchema, Err: fmt.Errorf("no choices in response")}
	}

	content := strings.TrimSpace(*out.Choices[0].Message.Content)
	if content == "" {
		return "", &apperr.ProviderError{Provider: Provider, Kind: apperr.KindEmpty, Err: apperr.ErrEmptyContent}
	}
	return content, nil
}
