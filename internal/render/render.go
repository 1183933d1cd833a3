package render

import (
	"bytes"
	_ "embed"
	"math"
	"strconv"
	"strings"
	"text/template"
	"time"

	"readme_updater/internal/models"
	"readme_updater/internal/timeprogress"
)

// Заголовки разделов в порядке следования.
const (
	HeaderWeather = "## weather outside"
	HeaderBing    = "## bing image of the day"
	HeaderWonder  = "## natural wonder of the day"
	HeaderCat     = "## cat as a service"
	HeaderJournal = "## journal"
)

// Headers возвращает заголовки разделов в порядке следования.
func Headers() []string {
	return []string{HeaderWeather, HeaderBing, HeaderWonder, HeaderCat, HeaderJournal}
}

// Заглушки для разделов без данных.
const (
	PlaceholderWeather       = "Weather data temporarily unavailable ❓"
	PlaceholderImage         = "_image of the day is unavailable_"
	PlaceholderWonderPlace   = "Unknown Location"
	PlaceholderWonderMessage = "A beautiful natural wonder awaits discovery."
	PlaceholderCat           = "_no cat today_"
	PlaceholderJournal       = "_the journal is quiet tonight_"
)

const (
	updatedLayout     = "Monday, 02 January 2006 | 15:04"
	journalDateLayout = "02 Jan 2006"
	observedLayout    = "2006-01-02, 15:04"
)

//go:embed document.md.tmpl
var documentTemplate string

var tmpl = template.Must(template.New("document").Parse(documentTemplate))

// Input - все данные одного документа. Отсутствующая сущность (nil) выводится заглушкой.
type Input struct {
	Title       string
	GeneratedAt time.Time
	Weather     *models.WeatherSnapshot
	Bing        *models.ImageOfDay
	Wonder      *models.ImageOfDay
	Cat         *models.ImageOfDay
	Journal     *models.JournalEntry
}

type view struct {
	Title     string
	Updated   string
	TimeLight string
	TimeDark  string
	Weather   string
	Bing      string
	Wonder    string
	Cat       string
	Journal   string
}

// Render собирает markdown-документ. Функция чистая: одинаковый вход дает побайтно одинаковый вывод.
func Render(in Input) (string, error) {
	v := view{
		Title:     oneLine(in.Title),
		Updated:   strings.ToLower(in.GeneratedAt.Format(updatedLayout)),
		TimeLight: timeprogress.LightFile,
		TimeDark:  timeprogress.DarkFile,
		Weather:   Weather(in.Weather),
		Bing:      imageBlock(in.Bing, "bing image of the day", PlaceholderImage),
		Wonder:    Wonder(in.Wonder),
		Cat:       imageBlock(in.Cat, "cat", PlaceholderCat),
		Journal:   Journal(in.Journal),
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Weather форматирует раздел погоды. Показатели без значения пропускаются.
func Weather(w *models.WeatherSnapshot) string {
	if w == nil {
		return PlaceholderWeather
	}

	location := oneLine(w.Location)
	if location == "" {
		location = PlaceholderWonderPlace
	}
	header := "**Weather in " + location + "**"
	if !w.ObservedAt.IsZero() {
		header += " (" + w.ObservedAt.Format(observedLayout) + ")"
	}

	temp := "🌡️ Temp: " + num(w.Temperature) + "°C"
	if w.FeelsLike != nil {
		temp += " (feels like " + num(*w.FeelsLike) + "°C)"
	}
	lines := []string{temp}
	if c := oneLine(w.Condition); c != "" {
		lines = append(lines, ConditionEmoji(c)+" Condition: "+c)
	}
	if w.WindSpeed != nil {
		wind := "💨 Wind: " + num(*w.WindSpeed) + " m/s"
		if w.WindGust != nil {
			wind += ", gusts up to " + num(*w.WindGust) + " m/s"
		}
		lines = append(lines, wind)
	}
	if w.Humidity != nil {
		lines = append(lines, "💧 Humidity: "+num(*w.Humidity)+"%")
	}
	if w.Pressure != nil {
		lines = append(lines, "📉 Pressure: "+strconv.FormatFloat(math.Round(*w.Pressure), 'f', 0, 64)+" hPa")
	}
	if w.CloudCover != nil {
		lines = append(lines, "☁️ Cloud cover: "+num(*w.CloudCover)+"%")
	}
	if w.UVIndex != nil {
		lines = append(lines, "🌞 UV index: "+num(*w.UVIndex))
	}
	if w.Visibility != nil {
		lines = append(lines, "👁 Visibility: "+num(*w.Visibility)+" km")
	}

	out := header + "\n\n" + strings.Join(lines, " <br>\n")
	if s := escapeHeadings(w.Summary); s != "" {
		out += "\n\n" + strings.ReplaceAll(s, "\n", " <br>\n")
	}
	return out
}

// Wonder форматирует раздел о чуде природы.
func Wonder(img *models.ImageOfDay) string {
	if img == nil {
		return "**" + PlaceholderWonderPlace + "**\n\n" + PlaceholderWonderMessage
	}
	place := oneLine(img.Title)
	if place == "" {
		place = PlaceholderWonderPlace
	}
	parts := []string{"**" + place + "**"}
	if img.URL != "" {
		parts = append(parts, "![Wonder]("+img.URL+")")
	}
	msg := escapeHeadings(img.Caption)
	if msg == "" {
		msg = PlaceholderWonderMessage
	}
	parts = append(parts, msg)
	return strings.Join(parts, "\n\n")
}

// Journal форматирует дневниковую запись.
func Journal(e *models.JournalEntry) string {
	if e == nil || strings.TrimSpace(e.Body) == "" {
		return PlaceholderJournal
	}
	var parts []string
	if title := oneLine(e.Title); title != "" {
		parts = append(parts, "### "+title)
	}
	if !e.Date.IsZero() {
		parts = append(parts, "<sub>"+strings.ToLower(e.Date.Format(journalDateLayout))+"</sub>")
	}
	parts = append(parts, escapeHeadings(e.Body))
	return strings.Join(parts, "\n\n")
}

func imageBlock(img *models.ImageOfDay, alt, placeholder string) string {
	if img == nil || img.URL == "" {
		return placeholder
	}
	var parts []string
	title := oneLine(img.Title)
	if title != "" {
		parts = append(parts, "**"+title+"**")
		alt = title
	}
	parts = append(parts, "!["+alt+"]("+img.URL+")")
	if c := escapeHeadings(img.Caption); c != "" {
		parts = append(parts, c)
	}
	if a := oneLine(img.Attribution); a != "" {
		parts = append(parts, "<sub>"+a+"</sub>")
	}
	return strings.Join(parts, "\n\n")
}

// ConditionEmoji подбирает эмодзи к текстовому описанию погоды.
func ConditionEmoji(condition string) string {
	c := strings.ToLower(condition)
	switch {
	case strings.Contains(c, "thunder"):
		return "⛈️"
	case strings.Contains(c, "freezing"), strings.Contains(c, "ice"), strings.Contains(c, "sleet"):
		return "🧊"
	case strings.Contains(c, "snow"), strings.Contains(c, "flurr"), strings.Contains(c, "blizzard"):
		return "❄️"
	case strings.Contains(c, "heavy rain"):
		return "⛈️"
	case strings.Contains(c, "rain"), strings.Contains(c, "drizzle"), strings.Contains(c, "shower"):
		return "🌧️"
	case strings.Contains(c, "fog"), strings.Contains(c, "mist"):
		return "🌫️"
	case strings.Contains(c, "partly"):
		return "⛅"
	case strings.Contains(c, "mostly clear"):
		return "🌤️"
	case strings.Contains(c, "cloud"), strings.Contains(c, "overcast"):
		return "☁️"
	case strings.Contains(c, "clear"), strings.Contains(c, "sunny"):
		return "☀️"
	default:
		return "❓"
	}
}

// num округляет до десятых и убирает лишние нули: 18.7, 45, 10.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// escapeHeadings понижает заголовки первого и второго уровня в свободном тексте до третьего,
// чтобы заголовки разделов встречались в документе ровно один раз.
func escapeHeadings(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		trimmed := strings.TrimLeft(l, " ")
		if level := headingLevel(trimmed); level == 1 || level == 2 {
			lines[i] = "###" + trimmed[level:]
		}
	}
	return strings.Join(lines, "\n")
}

func headingLevel(line string) int {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n == 0 || n == len(line) || (line[n] != ' ' && line[n] != '\t') {
		return 0
	}
	return n
}
