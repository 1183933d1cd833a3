package timeprogress_test

import (
	"strings"
	"testing"
	"time"

	"readme_updater/internal/timeprogress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	now := time.Date(2025, 6, 20, 23, 0, 0, 0, time.UTC)
	p := timeprogress.Calculate(now)

	testCases := []struct {
		name    string
		label   string
		wantLbl string
		got     float64
		want    float64
	}{
		{"day", p.Day.Label, "Friday", p.Day.Percent, 95.8333},
		{"week", p.Week.Label, "Week 25", p.Week.Percent, 70.8333},
		{"month", p.Month.Label, "June", p.Month.Percent, 66.5278},
		{"season", p.Season.Label, "Summer", p.Season.Percent, 21.6938},
		{"year", p.Year.Label, "Year 2025", p.Year.Percent, 46.8379},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantLbl, tc.label)
			assert.InDelta(t, tc.want, tc.got, 0.001)
		})
	}
	require.Equal(t, timeprogress.ColorDay, p.Day.Color)
	require.Equal(t, timeprogress.ColorYear, p.Year.Color)
}

func TestSeasonRange(t *testing.T) {
	testCases := []struct {
		now       time.Time
		wantStart time.Time
		wantEnd   time.Time
		wantName  string
	}{
		{time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "Winter"},
		{time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), "Winter"},
		{time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC), time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "Winter"},
		{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "Spring"},
		{time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), "Summer"},
		{time.Date(2024, 11, 30, 23, 59, 0, 0, time.UTC), time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), "Autumn"},
	}
	for _, tc := range testCases {
		start, end, name := timeprogress.SeasonRange(tc.now)
		require.Equal(t, tc.wantStart, start, tc.now.String())
		require.Equal(t, tc.wantEnd, end, tc.now.String())
		require.Equal(t, tc.wantName, name)
	}
}

func TestCalculate_WinterAcrossYears(t *testing.T) {
	p := timeprogress.Calculate(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC))
	require.Equal(t, "Winter", p.Season.Label)
	require.InDelta(t, 50.0, p.Season.Percent, 0.0001)
}

func TestCalculate_Boundaries(t *testing.T) {
	start := timeprogress.Calculate(time.Date(2024, 6, 24, 0, 0, 0, 0, time.UTC)) // понедельник
	require.Equal(t, 0.0, start.Day.Percent)
	require.Equal(t, 0.0, start.Week.Percent)

	end := timeprogress.Calculate(time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC))
	require.InDelta(t, 100.0, end.Year.Percent, 0.001)
	require.Less(t, end.Year.Percent, 100.0)
}

func TestRenderSVG(t *testing.T) {
	p := timeprogress.Calculate(time.Date(2025, 6, 20, 23, 0, 0, 0, time.UTC))

	light := timeprogress.RenderSVG(p, timeprogress.TextLight)
	dark := timeprogress.RenderSVG(p, timeprogress.TextDark)

	require.True(t, strings.HasPrefix(light, "<svg "))
	require.Contains(t, light, `fill="#000000"`)
	require.Contains(t, dark, `fill="#ffffff"`)
	for _, want := range []string{"Friday", "Week 25", "June", "Summer", "Year 2025", "95.83%", "70.83%", "66.53%", "21.69%", "46.84%"} {
		require.Contains(t, light, want)
	}
	require.Contains(t, light, `fill="`+timeprogress.ColorSeason+`"`)
	require.Equal(t, 5, strings.Count(light, "<rect "))
	require.Equal(t, light, timeprogress.RenderSVG(p, timeprogress.TextLight))
}
