package timetable

import "time"

// Page is a stored timetable, unique per (Category, Key).
type Page struct {
	Category    Category
	Key         string // NormalizeKey(DisplayName)
	DisplayName string
	Content     string // rendered verbatim
	UpdatedAt   time.Time
}

// NewPage builds a page whose key is derived from the display name.
func NewPage(c Category, displayName, content string) *Page {
	return &Page{
		Category:    c,
		Key:         NormalizeKey(displayName),
		DisplayName: displayName,
		Content:     content,
	}
}

// Caption is the header shown above the page content.
func (p *Page) Caption() string {
	return p.Category.Caption(p.DisplayName)
}
