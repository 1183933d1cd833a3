package models

import "time"

// WeatherSnapshot - текущая погода в одной точке.
// Необязательные показатели равны nil, если провайдер их не вернул.
type WeatherSnapshot struct {
	Location    string
	ObservedAt  time.Time
	Temperature float64 // °C
	FeelsLike   *float64
	Condition   string
	WindSpeed   *float64 // м/с
	WindGust    *float64
	Humidity    *float64 // %
	Pressure    *float64 // гПа
	CloudCover  *float64 // %
	UVIndex     *float64
	Visibility  *float64 // км
	Summary     string
}

// Float возвращает указатель на v.
func Float(v float64) *float64 { return &v }
