package timeprogress

import (
	"fmt"
	"html"
	"strings"

	"readme_updater/internal/models"
)

// Имена файлов с диаграммой для светлой и темной темы.
const (
	LightFile = "time-light.svg"
	DarkFile  = "time-dark.svg"
)

// Цвет подписей для светлой и темной темы.
const (
	TextLight = "#000000"
	TextDark  = "#ffffff"
)

const (
	chartWidth  = 600
	labelWidth  = 110
	barMaxWidth = 400
	barHeight   = 26
	barGap      = 12
	padding     = 10
	fontSize    = 14
)

// RenderSVG рисует горизонтальную столбчатую диаграмму с прозрачным фоном.
// textColor задает цвет подписей; одинаковый вход дает одинаковый вывод.
func RenderSVG(p models.TimeProgress, textColor string) string {
	bars := p.Bars()
	height := padding*2 + len(bars)*barHeight + (len(bars)-1)*barGap

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		chartWidth, height, chartWidth, height)
	fmt.Fprintf(&b, `  <g font-family="Poppins, Helvetica, Arial, sans-serif" font-size="%d" fill="%s">`+"\n", fontSize, textColor)
	for i, bar := range bars {
		y := padding + i*(barHeight+barGap)
		textY := y + barHeight/2 + fontSize/3
		width := clamp(bar.Percent) / 100 * barMaxWidth

		fmt.Fprintf(&b, `    <text x="%d" y="%d" text-anchor="end">%s</text>`+"\n",
			labelWidth-padding, textY, html.EscapeString(bar.Label))
		fmt.Fprintf(&b, `    <rect x="%d" y="%d" width="%.2f" height="%d" rx="3" fill="%s"/>`+"\n",
			labelWidth, y, width, barHeight, bar.Color)
		fmt.Fprintf(&b, `    <text x="%.2f" y="%d">%.2f%%</text>`+"\n",
			float64(labelWidth)+width+8, textY, bar.Percent)
	}
	b.WriteString("  </g>\n</svg>\n")
	return b.String()
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
