package fetcher_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"readme_updater/internal/apperr"
	"readme_updater/internal/fetcher"
	"readme_updater/internal/logger"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func newClient() *http.Client {
	return fetcher.NewHTTPClient(5 * time.Second)
}

func TestWeatherClient_Tomorrow(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		status   int
		wantErr  string
		wantCond string
	}{
		{
			name: "valid",
			body: `{"data":{"time":"2025-06-20T22:55:00Z","values":{"temperature":18.7,"temperatureApparent":17.9,
				"humidity":45,"windSpeed":3.5,"weatherCode":1001}},"location":{"name":"Zyuzino, Moscow"}}`,
			status:   http.StatusOK,
			wantCond: "Cloudy",
		},
		{
			name:     "unknown code",
			body:     `{"data":{"time":"2025-06-20T22:55:00Z","values":{"temperature":1,"weatherCode":4242}}}`,
			status:   http.StatusOK,
			wantCond: "Unknown",
		},
		{
			name:    "missing temperature",
			body:    `{"data":{"time":"2025-06-20T22:55:00Z","values":{"humidity":45}}}`,
			status:  http.StatusOK,
			wantErr: apperr.KindSchema,
		},
		{
			name:    "bad time",
			body:    `{"data":{"time":"yesterday","values":{"temperature":3}}}`,
			status:  http.StatusOK,
			wantErr: apperr.KindSchema,
		},
		{
			name:    "rate limited",
			body:    `{"message":"too many calls"}`,
			status:  http.StatusTooManyRequests,
			wantErr: apperr.KindStatus,
		},
		{
			name:    "not json",
			body:    `<html>`,
			status:  http.StatusOK,
			wantErr: apperr.KindSchema,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/v4/weather/realtime", r.URL.Path)
				require.Equal(t, "Zyuzino,Moscow", r.URL.Query().Get("location"))
				require.Equal(t, "key", r.URL.Query().Get("apikey"))
				require.Equal(t, "metric", r.URL.Query().Get("units"))
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			c := fetcher.NewWeatherClient(fetcher.WeatherOptions{
				Provider:     fetcher.ProviderTomorrow,
				BaseURL:      server.URL,
				APIKey:       "key",
				Location:     "Zyuzino,Moscow",
				LocationName: "Moscow",
			}, newClient())

			snap, err := c.Fetch(context.Background())
			if tc.wantErr != "" {
				var perr *apperr.ProviderError
				require.ErrorAs(t, err, &perr)
				require.Equal(t, tc.wantErr, perr.Kind)
				require.Equal(t, fetcher.ProviderTomorrow, perr.Provider)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "Moscow", snap.Location)
			require.Equal(t, tc.wantCond, snap.Condition)
		})
	}
}

func TestWeatherClient_TomorrowFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"time":"2025-06-20T22:55:00Z","values":{"temperature":18.7,"humidity":45,"weatherCode":1001}},
			"location":{"name":"Zyuzino"}}`))
	}))
	defer server.Close()

	c := fetcher.NewWeatherClient(fetcher.WeatherOptions{BaseURL: server.URL, Location: "x"}, newClient())
	snap, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Zyuzino", snap.Location)
	require.Equal(t, 18.7, snap.Temperature)
	require.NotNil(t, snap.Humidity)
	require.Equal(t, 45.0, *snap.Humidity)
	require.Nil(t, snap.FeelsLike)
	require.Nil(t, snap.WindGust)
	require.Equal(t, time.Date(2025, 6, 20, 22, 55, 0, 0, time.UTC), snap.ObservedAt)
}

func TestWeatherClient_WeatherAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/current.json", r.URL.Path)
		require.Equal(t, "Moscow", r.URL.Query().Get("q"))
		require.Equal(t, "no", r.URL.Query().Get("aqi"))
		w.Write([]byte(`{"location":{"name":"Moscow"},"current":{"last_updated_epoch":1750459500,"temp_c":12.5,
			"condition":{"text":"Light rain"},"wind_kph":36,"humidity":80,"pressure_mb":1012}}`))
	}))
	defer server.Close()

	c := fetcher.NewWeatherClient(fetcher.WeatherOptions{
		Provider: fetcher.ProviderWeatherAPI,
		BaseURL:  server.URL,
		APIKey:   "key",
		Location: "Moscow",
	}, newClient())
	require.Equal(t, fetcher.ProviderWeatherAPI, c.Name())

	snap, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Moscow", snap.Location)
	require.Equal(t, 12.5, snap.Temperature)
	require.Equal(t, "Light rain", snap.Condition)
	require.InDelta(t, 10.0, *snap.WindSpeed, 0.001)
	require.Equal(t, 1012.0, *snap.Pressure)
	require.Equal(t, int64(1750459500), snap.ObservedAt.Unix())
}

func TestWeatherClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := fetcher.NewWeatherClient(fetcher.WeatherOptions{BaseURL: server.URL, Location: "x"}, newClient())
	_, err := c.Fetch(ctx)

	var perr *apperr.ProviderError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, apperr.KindTimeout, perr.Kind)
}

const bingPage = `<html><body>
<time datetime="2025-06-20">June 20, 2025</time>
<div class="position-relative">
  <p>Short</p>
  <p>Sunrise over the dunes of the Namib desert, painted orange by the first light.</p>
  <p>© Someone Famous</p>
  <p>The dunes here are among the tallest in the world.</p>
</div>
</body></html>`

func TestBingClient_Fetch(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bing/feed":
			require.Equal(t, "ca", r.URL.Query().Get("country"))
			require.Equal(t, "1", r.URL.Query().Get("n"))
			json.NewEncoder(w).Encode([]map[string]string{{
				"title":     "Namib dunes",
				"copyright": "© Someone Famous",
				"fullUrl":   "https://img.example/namib.jpg",
				"pageUrl":   server.URL + "/bing/page",
				"date":      "2025-06-20",
			}})
		case "/bing/page":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(bingPage))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	img, err := fetcher.NewBingClient(server.URL, "ca", newClient()).Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Namib dunes", img.Title)
	require.Equal(t, "https://img.example/namib.jpg", img.URL)
	require.Equal(t, "© Someone Famous", img.Attribution)
	require.Equal(t, "June 20, 2025", img.Date)
	require.Equal(t, "Sunrise over the dunes of the Namib desert, painted orange by the first light.\n\n"+
		"The dunes here are among the tallest in the world.", img.Caption)
}

func TestBingClient_PageFailureKeepsImage(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bing/feed" {
			w.Write([]byte(`[{"title":"Fjord","fullUrl":"https://img.example/f.jpg","pageUrl":"` + server.URL + `/gone"}]`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	img, err := fetcher.NewBingClient(server.URL, "ca", newClient()).Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Fjord", img.Title)
	require.Equal(t, fetcher.NoDescription, img.Caption)
}

func TestBingClient_EmptyFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	_, err := fetcher.NewBingClient(server.URL, "ca", newClient()).Fetch(context.Background())
	var perr *apperr.ProviderError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, apperr.KindEmpty, perr.Kind)
}

func TestParseBingPage_Fallback(t *testing.T) {
	html := `<html><body><time datetime="2025-01-02"></time>
	<p>tiny</p>
	<p>© Some Photographer / Getty Images, licensed for use on this page only, all rights reserved</p>
	<p>A long paragraph outside the usual container that still describes the picture well.</p>
	</body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	date, desc := fetcher.ParseBingPage(doc)
	require.Equal(t, "2025-01-02", date)
	require.Equal(t, "A long paragraph outside the usual container that still describes the picture well.", desc)
}

func TestCatClient_Fetch(t *testing.T) {
	testCases := []struct {
		name        string
		body        string
		wantTitle   string
		wantCaption string
		wantErr     bool
	}{
		{
			name:        "with breed",
			body:        `[{"id":"a1","url":"https://cdn.example/a1.jpg","breeds":[{"name":"Siberian","origin":"Russia","temperament":"Curious, Playful"}]}]`,
			wantTitle:   "Siberian",
			wantCaption: "Russia · Curious, Playful",
		},
		{
			name: "no breed",
			body: `[{"id":"b2","url":"https://cdn.example/b2.jpg","breeds":[]}]`,
		},
		{
			name:    "no url",
			body:    `[{"id":"c3"}]`,
			wantErr: true,
		},
		{
			name:    "empty",
			body:    `[]`,
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/v1/images/search", r.URL.Path)
				require.Equal(t, "cat-key", r.Header.Get("x-api-key"))
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			img, err := fetcher.NewCatClient(server.URL, "cat-key", newClient()).Fetch(context.Background())
			if tc.wantErr {
				var perr *apperr.ProviderError
				require.ErrorAs(t, err, &perr)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, img.URL)
			require.Equal(t, tc.wantTitle, img.Title)
			require.Equal(t, tc.wantCaption, img.Caption)
			require.Equal(t, "via thecatapi.com", img.Attribution)
		})
	}
}

func TestSearchClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/search", r.URL.Path)
		require.Equal(t, "Bearer tvly", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		require.Equal(t, "salt flats bolivia", req["query"])
		require.Equal(t, float64(3), req["max_results"])
		require.Equal(t, true, req["include_images"])
		require.Equal(t, "month", req["time_range"])

		w.Write([]byte(`{"query":"salt flats bolivia","answer":"A huge mirror of salt.",
			"results":[{"title":"Salar de Uyuni","url":"https://example.org/uyuni","content":"The largest salt flat."}],
			"images":["https://img.example/1.jpg",{"url":"https://img.example/2.jpg","description":"reflections"}]}`))
	}))
	defer server.Close()

	c := fetcher.NewSearchClient(server.URL, "tvly", 3, newClient())
	resp, err := c.Search(context.Background(), c.ImageSearch("salt flats bolivia"))
	require.NoError(t, err)
	require.Equal(t, "A huge mirror of salt.", resp.Answer)
	require.Len(t, resp.Results, 1)
	require.Equal(t, []fetcher.SearchImage{
		{URL: "https://img.example/1.jpg"},
		{URL: "https://img.example/2.jpg", Description: "reflections"},
	}, resp.Images)

	formatted := resp.FormatForLLM()
	require.Contains(t, formatted, "Summary: A huge mirror of salt.")
	require.Contains(t, formatted, "1. Salar de Uyuni\n   URL: https://example.org/uyuni\n   The largest salt flat.")
	require.Contains(t, formatted, "2. https://img.example/2.jpg - reflections")
}

func TestSearchClient_EmptyQuery(t *testing.T) {
	c := fetcher.NewSearchClient("http://127.0.0.1:1", "tvly", 3, newClient())
	_, err := c.Search(context.Background(), c.ImageSearch("  "))
	var perr *apperr.ProviderError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, apperr.KindSchema, perr.Kind)
}

func TestFirstImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodHead, r.Method)
		switch r.URL.Path {
		case "/page.html":
			w.Header().Set("Content-Type", "text/html")
		case "/photo.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	urls := []string{"", server.URL + "/missing.jpg", server.URL + "/page.html", server.URL + "/photo.jpg"}
	require.Equal(t, server.URL+"/photo.jpg", fetcher.FirstImage(context.Background(), newClient(), urls))
	require.Equal(t, "", fetcher.FirstImage(context.Background(), newClient(), urls[:3]))
}

func TestCollect(t *testing.T) {
	log := logger.Component("test")

	t.Run("non fatal failures are recorded", func(t *testing.T) {
		var got []string
		failures, err := fetcher.Collect(context.Background(), log, []fetcher.Task{
			{Name: "weather", Run: func(ctx context.Context) error { return errors.New("down") }},
			{Name: "cat", Run: func(ctx context.Context) error { return nil }},
			{Name: "bing", Run: func(ctx context.Context) error { return errors.New("404") }},
		})
		require.NoError(t, err)
		for _, f := range failures {
			got = append(got, f.Name)
		}
		require.Equal(t, []string{"bing", "weather"}, got)
	})

	t.Run("fatal failure cancels the rest", func(t *testing.T) {
		boom := errors.New("journal failed")
		_, err := fetcher.Collect(context.Background(), log, []fetcher.Task{
			{Name: "journal", Fatal: true, Run: func(ctx context.Context) error { return boom }},
			{Name: "slow", Run: func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			}},
		})
		require.ErrorIs(t, err, boom)
	})
}
