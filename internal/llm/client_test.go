package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"readme_updater/internal/apperr"
	"readme_updater/internal/llm"

	"github.com/stretchr/testify/require"
)

func TestClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req struct {
			Model       string  `json:"model"`
			Temperature float64 `json:"temperature"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "tiny-model", req.Model)
		require.Equal(t, 0.7, req.Temperature)
		require.Len(t, req.Messages, 2)
		require.Equal(t, "system", req.Messages[0].Role)
		require.Equal(t, "be brief", req.Messages[0].Content)
		require.Equal(t, "user", req.Messages[1].Role)

		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  hello there \n"}}]}`))
	}))
	defer server.Close()

	c := llm.NewClient(server.URL+"/v1/", "sk-test", "tiny-model", &http.Client{Timeout: time.Second})
	out, err := c.Complete(context.Background(), llm.Request{System: "be brief", User: "hi", Temperature: 0.7})
	require.NoError(t, err)
	require.Equal(t, "hello there", out)
}

func TestClient_CompleteErrors(t *testing.T) {
	testCases := []struct {
		name     string
		status   int
		body     string
		wantKind string
	}{
		{"api error", http.StatusBadRequest, `{"error":{"message":"model not found"}}`, apperr.KindStatus},
		{"server error", http.StatusBadGateway, `bad gateway`, apperr.KindStatus},
		{"no choices", http.StatusOK, `{"choices":[]}`, apperr.KindSchema},
		{"empty content", http.StatusOK, `{"choices":[{"message":{"content":"   "}}]}`, apperr.KindEmpty},
		{"garbage", http.StatusOK, `not json`, apperr.KindSchema},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			c := llm.NewClient(server.URL, "k", "m", &http.Client{Timeout: time.Second})
			_, err := c.Complete(context.Background(), llm.Request{User: "hi"})

			var perr *apperr.ProviderError
			require.ErrorAs(t, err, &perr)
			require.Equal(t, llm.Provider, perr.Provider)
			require.Equal(t, tc.wantKind, perr.Kind)
		})
	}
}

func TestClient_APIErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer server.Close()

	_, err := llm.NewClient(server.URL, "k", "m", http.DefaultClient).Complete(context.Background(), llm.Request{User: "hi"})
	require.ErrorContains(t, err, "invalid api key")
	require.ErrorContains(t, err, "status 401")
}

func TestDecodeJSON(t *testing.T) {
	type answer struct {
		Place string `json:"place"`
	}

	testCases := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{"plain", `{"place":"Uyuni"}`, "Uyuni", false},
		{"fenced", "```json\n{\"place\":\"Uyuni\"}\n```", "Uyuni", false},
		{"bare fence", "```\n{\"place\":\"Lofoten\"}\n```", "Lofoten", false},
		{"prose", "Sure! here it is", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var a answer
			err := llm.DecodeJSON(tc.content, &a)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, a.Place)
		})
	}
}
