package render

import "strings"

// ExtractSection возвращает текст раздела header из ранее отрисованного документа
// или пустую строку, если раздела нет.
func ExtractSection(doc, header string) string {
	lines := strings.Split(strings.ReplaceAll(doc, "\r\n", "\n"), "\n")
	start := -1
	for i, l := range lines {
		if strings.TrimRight(l, " ") == header {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return ""
	}
	end := len(lines)
	for i := start; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "## ") {
			end = i
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines[start:end], "\n"))
}

// WonderPlace достает название места из раздела о чуде природы.
func WonderPlace(section string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(section), "\n")
	first = strings.TrimSpace(first)
	if !strings.HasPrefix(first, "**") || !strings.HasSuffix(first, "**") || len(first) <= 4 {
		return ""
	}
	place := strings.TrimSpace(first[2 : len(first)-2])
	if place == PlaceholderWonderPlace {
		return ""
	}
	return place
}

// JournalText достает текст записи из раздела дневника без служебных строк.
func JournalText(section string) string {
	section = strings.TrimSpace(section)
	if section == "" || section == PlaceholderJournal {
		return ""
	}
	var kept []string
	for _, l := range strings.Split(section, "\n") {
		if strings.HasPrefix(l, "<sub>") && strings.HasSuffix(l, "</sub>") {
			continue
		}
		kept = append(kept, strings.TrimPrefix(l, "### "))
	}
	text := strings.Join(kept, "\n")
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(text)
}
