package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"readme_updater/internal/apperr"
)

const userAgent = "readme-updater/1.0"

// NewHTTPClient возвращает общий клиент для всех провайдеров.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// getJSON выполняет GET-запрос и декодирует JSON-ответ в out.
func getJSON(ctx context.Context, client *http.Client, provider, rawURL string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &apperr.ProviderError{Provider: provider, Kind: apperr.KindNetwork, Err: err}
	}
	return doJSON(client, provider, req, header, out)
}

// postJSON отправляет body в формате JSON и декодирует ответ в out.
func postJSON(ctx context.Context, client *http.Client, provider, rawURL string, header http.Header, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", provider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(payload))
	if err != nil {
		return &apperr.ProviderError{Provider: provider, Kind: apperr.KindNetwork, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return doJSON(client, provider, req, header, out)
}

func doJSON(client *http.Client, provider string, req *http.Request, header http.Header, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return apperr.NewProviderError(provider, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(provider, resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return apperr.NewProviderError(provider, err)
		}
		return &apperr.ProviderError{Provider: provider, Kind: apperr.KindSchema, Err: err}
	}
	return nil
}

func checkStatus(provider string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &apperr.ProviderError{
		Provider:   provider,
		Kind:       apperr.KindStatus,
		StatusCode: resp.StatusCode,
		Err:        fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(snippet))),
	}
}

func schemaError(provider, format string, args ...any) error {
	return &apperr.ProviderError{Provider: provider, Kind: apperr.KindSchema, Err: fmt.Errorf(format, args...)}
}

// CheckImage проверяет HEAD-запросом, что по url доступна картинка.
func CheckImage(ctx context.Context, client *http.Client, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK && strings.HasPrefix(resp.Header.Get("Content-Type"), "image/")
}

// FirstImage возвращает первый доступный url из списка или пустую строку.
func FirstImage(ctx context.Context, client *http.Client, urls []string) string {
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if CheckImage(ctx, client, u) {
			return u
		}
	}
	return ""
}
