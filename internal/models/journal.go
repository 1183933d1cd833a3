package models

import "time"

// JournalEntry - дневниковая запись от лица персонажа.
type JournalEntry struct {
	Date    time.Time
	Title   string
	Body    string
	Event   string
	Persona string
}
