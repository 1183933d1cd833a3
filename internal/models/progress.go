package models

// ProgressBar - доля прошедшего периода в процентах.
type ProgressBar struct {
	Label   string
	Percent float64
	Color   string
}

// TimeProgress содержит полосы дня, недели, месяца, сезона и года.
type TimeProgress struct {
	Day    ProgressBar
	Week   ProgressBar
	Month  ProgressBar
	Season ProgressBar
	Year   ProgressBar
}

// Bars возвращает полосы в порядке отображения.
func (p TimeProgress) Bars() []ProgressBar {
	return []ProgressBar{p.Day, p.Week, p.Month, p.Season, p.Year}
}
