package fetcher

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"readme_updater/internal/models"
)

const (
	ProviderTomorrow   = "tomorrow.io"
	ProviderWeatherAPI = "weatherapi"
)

// weatherCodes переводит коды tomorrow.io в текстовое описание.
var weatherCodes = map[int]string{
	0:    "Unknown",
	1000: "Clear, Sunny",
	1100: "Mostly Clear",
	1101: "Partly Cloudy",
	1102: "Mostly Cloudy",
	1001: "Cloudy",
	2000: "Fog",
	2100: "Light Fog",
	4000: "Drizzle",
	4001: "Rain",
	4200: "Light Rain",
	4201: "Heavy Rain",
	5000: "Snow",
	5001: "Flurries",
	5100: "Light Snow",
	5101: "Heavy Snow",
	6000: "Freezing Drizzle",
	6001: "Freezing Rain",
	6200: "Light Freezing Rain",
	6201: "Heavy Freezing Rain",
	7000: "Ice Pellets",
	7101: "Heavy Ice Pellets",
	7102: "Light Ice Pellets",
	8000: "Thunderstorm",
}

// WeatherCondition возвращает описание кода погоды tomorrow.io.
func WeatherCondition(code int) string {
	if c, ok := weatherCodes[code]; ok {
		return c
	}
	return weatherCodes[0]
}

// WeatherOptions описывает источник погоды.
type WeatherOptions struct {
	Provider     string
	BaseURL      string
	APIKey       string
	Location     string
	LocationName string
}

// WeatherClient запрашивает текущую погоду у выбранного провайдера.
type WeatherClient struct {
	opts   WeatherOptions
	client *http.Client
}

func NewWeatherClient(opts WeatherOptions, client *http.Client) *WeatherClient {
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &WeatherClient{opts: opts, client: client}
}

// Name возвращает имя провайдера.
func (c *WeatherClient) Name() string {
	if c.opts.Provider == ProviderWeatherAPI {
		return ProviderWeatherAPI
	}
	return ProviderTomorrow
}

// Fetch загружает текущую погоду.
func (c *WeatherClient) Fetch(ctx context.Context) (*models.WeatherSnapshot, error) {
	var (
		snap *models.WeatherSnapshot
		err  error
	)
	if c.Name() == ProviderWeatherAPI {
		snap, err = c.fetchWeatherAPI(ctx)
	} else {
		snap, err = c.fetchTomorrow(ctx)
	}
	if err != nil {
		return nil, err
	}
	if c.opts.LocationName != "" {
		snap.Location = c.opts.LocationName
	}
	return snap, nil
}

type tomorrowResponse struct {
	Data *struct {
		Time   string `json:"time"`
		Values struct {
			Temperature          *float64 `json:"temperature"`
			TemperatureApparent  *float64 `json:"temperatureApparent"`
			Humidity             *float64 `json:"humidity"`
			WindSpeed            *float64 `json:"windSpeed"`
			WindGust             *float64 `json:"windGust"`
			PressureSurfaceLevel *float64 `json:"pressureSurfaceLevel"`
			CloudCover           *float64 `json:"cloudCover"`
			UVIndex              *float64 `json:"uvIndex"`
			Visibility           *float64 `json:"visibility"`
			WeatherCode          *int     `json:"weatherCode"`
		} `json:"values"`
	} `json:"data"`
	Location struct {
		Name string `json:"name"`
	} `json:"location"`
}

func (c *WeatherClient) fetchTomorrow(ctx context.Context) (*models.WeatherSnapshot, error) {
	q := url.Values{}
	q.Set("location", c.opts.Location)
	q.Set("apikey", c.opts.APIKey)
	q.Set("units", "metric")

	var resp tomorrowResponse
	if err := getJSON(ctx, c.client, ProviderTomorrow, c.opts.BaseURL+"/v4/weather/realtime?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, schemaError(ProviderTomorrow, "missing data object")
	}
	v := resp.Data.Values
	if v.Temperature == nil {
		return nil, schemaError(ProviderTomorrow, "missing temperature")
	}
	observed, err := time.Parse(time.RFC3339, resp.Data.Time)
	if err != nil {
		return nil, schemaError(ProviderTomorrow, "invalid time %q: %v", resp.Data.Time, err)
	}

	code := 0
	if v.WeatherCode != nil {
		code = *v.WeatherCode
	}
	return &models.WeatherSnapshot{
		Location:    resp.Location.Name,
		ObservedAt:  observed,
		Temperature: *v.Temperature,
		FeelsLike:   v.TemperatureApparent,
		Condition:   WeatherCondition(code),
		WindSpeed:   v.WindSpeed,
		WindGust:    v.WindGust,
		Humidity:    v.Humidity,
		Pressure:    v.PressureSurfaceLevel,
		CloudCover:  v.CloudCover,
		UVIndex:     v.UVIndex,
		Visibility:  v.Visibility,
	}, nil
}

type weatherAPIResponse struct {
	Location struct {
		Name string `json:"name"`
	} `json:"location"`
	Current *struct {
		LastUpdatedEpoch int64    `json:"last_updated_epoch"`
		TempC            *float64 `json:"temp_c"`
		FeelsLikeC       *float64 `json:"feelslike_c"`
		Condition        struct {
			Text string `json:"text"`
		} `json:"condition"`
		WindKph    *float64 `json:"wind_kph"`
		GustKph    *float64 `json:"gust_kph"`
		Humidity   *float64 `json:"humidity"`
		PressureMb *float64 `json:"pressure_mb"`
		Cloud      *float64 `json:"cloud"`
		UV         *float64 `json:"uv"`
		VisKm      *float64 `json:"vis_km"`
	} `json:"current"`
}

func (c *WeatherClient) fetchWeatherAPI(ctx context.Context) (*models.WeatherSnapshot, error) {
	q := url.Values{}
	q.Set("key", c.opts.APIKey)
	q.Set("q", c.opts.Location)
	q.Set("aqi", "no")

	var resp weatherAPIResponse
	if err := getJSON(ctx, c.client, ProviderWeatherAPI, c.opts.BaseURL+"/v1/current.json?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	cur := resp.Current
	if cur == nil {
		return nil, schemaError(ProviderWeatherAPI, "missing current object")
	}
	if cur.TempC == nil {
		return nil, schemaError(ProviderWeatherAPI, "missing temp_c")
	}
	if cur.LastUpdatedEpoch <= 0 {
		return nil, schemaError(ProviderWeatherAPI, "missing last_updated_epoch")
	}

	condition := strings.TrimSpace(cur.Condition.Text)
	if condition == "" {
		condition = WeatherCondition(0)
	}
	return &models.WeatherSnapshot{
		Location:    resp.Location.Name,
		ObservedAt:  time.Unix(cur.LastUpdatedEpoch, 0).UTC(),
		Temperature: *cur.TempC,
		FeelsLike:   cur.FeelsLikeC,
		Condition:   condition,
		WindSpeed:   kphToMps(cur.WindKph),
		WindGust:    kphToMps(cur.GustKph),
		Humidity:    cur.Humidity,
		Pressure:    cur.PressureMb,
		CloudCover:  cur.Cloud,
		UVIndex:     cur.UV,
		Visibility:  cur.VisKm,
	}, nil
}

func kphToMps(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return models.Float(*v / 3.6)
}
