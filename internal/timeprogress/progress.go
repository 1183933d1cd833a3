package timeprogress

import (
	"fmt"
	"time"

	"readme_updater/internal/models"
)

// Цвета полос.
const (
	ColorDay    = "#a8d5ba"
	ColorWeek   = "#90c3d4"
	ColorMonth  = "#f3d6ba"
	ColorSeason = "#d6a8d1"
	ColorYear   = "#f2a8a8"
)

// Calculate считает, какая доля дня, ISO-недели, месяца, метеорологического сезона и года прошла к моменту now.
// Все доли считаются по целым прошедшим минутам в часовом поясе now.
func Calculate(now time.Time) models.TimeProgress {
	loc := now.Location()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	weekday := (int(now.Weekday()) + 6) % 7 // понедельник = 0
	weekStart := midnight.AddDate(0, 0, -weekday)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	seasonStart, seasonEnd, season := SeasonRange(now)
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)

	_, isoWeek := now.ISOWeek()
	return models.TimeProgress{
		Day: models.ProgressBar{
			Label:   now.Weekday().String(),
			Percent: float64(now.Hour()*60+now.Minute()) / (24 * 60) * 100,
			Color:   ColorDay,
		},
		Week: models.ProgressBar{
			Label:   fmt.Sprintf("Week %d", isoWeek),
			Percent: percent(now, weekStart, weekStart.AddDate(0, 0, 7)),
			Color:   ColorWeek,
		},
		Month: models.ProgressBar{
			Label:   now.Month().String(),
			Percent: percent(now, monthStart, monthStart.AddDate(0, 1, 0)),
			Color:   ColorMonth,
		},
		Season: models.ProgressBar{
			Label:   season,
			Percent: percent(now, seasonStart, seasonEnd),
			Color:   ColorSeason,
		},
		Year: models.ProgressBar{
			Label:   fmt.Sprintf("Year %d", now.Year()),
			Percent: percent(now, yearStart, yearStart.AddDate(1, 0, 0)),
			Color:   ColorYear,
		},
	}
}

// SeasonRange возвращает границы метеорологического сезона, в который попадает now, и его название.
// Зима начинается 1 декабря, поэтому в январе и феврале ее начало приходится на прошлый год.
func SeasonRange(now time.Time) (start, end time.Time, name string) {
	loc := now.Location()
	year := now.Year()
	var startMonth time.Month
	switch now.Month() {
	case time.December, time.January, time.February:
		startMonth, name = time.December, "Winter"
		if now.Month() != time.December {
			year--
		}
	case time.March, time.April, time.May:
		startMonth, name = time.March, "Spring"
	case time.June, time.July, time.August:
		startMonth, name = time.June, "Summer"
	default:
		startMonth, name = time.September, "Autumn"
	}
	start = time.Date(year, startMonth, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 3, 0), name
}

func percent(now, start, end time.Time) float64 {
	elapsed := int64(now.Sub(start) / time.Minute)
	total := int64(end.Sub(start) / time.Minute)
	if total <= 0 {
		return 0
	}
	return float64(elapsed) / float64(total) * 100
}
