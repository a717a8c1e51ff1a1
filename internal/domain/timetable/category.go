// internal/domain/timetable/category.go
package timetable

import (
	"fmt"
	"strings"
)

// Category is the kind of timetable a page belongs to.
// The zero value is not a valid category.
type Category int

const (
	CategoryClass Category = iota + 1
	CategoryTeacher
	CategoryClassroom
)

// MatchPolicy tells the resolver how a category is looked up.
type MatchPolicy int

const (
	// MatchExact only accepts a page whose key equals the query.
	// Class names like "1H" and "1Hs" would collide under prefix matching.
	MatchExact MatchPolicy = iota + 1
	// MatchPrefix accepts every page whose key starts with the query.
	MatchPrefix
)

type categoryInfo struct {
	tag      string
	policy   MatchPolicy
	prompt   string
	caption  string
	subject  string
	command  string
	helpText string
}

var categoryTable = map[Category]categoryInfo{
	CategoryClass: {
		tag:      "class",
		policy:   MatchExact,
		prompt:   "Di quale classe vuoi sapere l'orario?",
		caption:  "Classe: %s",
		subject:  "la classe",
		command:  "classe",
		helpText: "Mostra gli orari di una classe.",
	},
	CategoryTeacher: {
		tag:      "teacher",
		policy:   MatchPrefix,
		prompt:   "Qual'è il nome del prof di cui vuoi sapere l'orario?",
		caption:  "Prof: %s",
		subject:  "il prof",
		command:  "prof",
		helpText: "Mostra gli orari di un prof.",
	},
	CategoryClassroom: {
		tag:      "classroom",
		policy:   MatchPrefix,
		prompt:   "Di quale aula vuoi sapere l'orario?",
		caption:  "Aula: %s",
		subject:  "l'aula",
		command:  "aula",
		helpText: "Mostra gli orari di un'aula.",
	},
}

// Categories returns every category in the fixed order free-text
// queries are resolved in.
func Categories() []Category {
	return []Category{CategoryClass, CategoryTeacher, CategoryClassroom}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryTable[c]
	return ok
}

// String returns the storage tag of the category ("class", "teacher", "classroom").
func (c Category) String() string {
	if info, ok := categoryTable[c]; ok {
		return info.tag
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

func (c Category) Policy() MatchPolicy { return categoryTable[c].policy }

// Prompt is the question the bot asks when a category command has no argument.
func (c Category) Prompt() string { return categoryTable[c].prompt }

// Caption renders the header placed above a page of this category.
func (c Category) Caption(displayName string) string {
	return fmt.Sprintf(categoryTable[c].caption, displayName)
}

// Subject is the Italian noun phrase used in "not found" replies, article included.
func (c Category) Subject() string { return categoryTable[c].subject }

// Command is the bot command (without slash) bound to the category.
func (c Category) Command() string { return categoryTable[c].command }

func (c Category) HelpText() string { return categoryTable[c].helpText }

// ParseCategory maps a storage tag back to its Category.
func ParseCategory(tag string) (Category, error) {
	for c, info := range categoryTable {
		if info.tag == tag {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown timetable category %q", tag)
}

// CategoryForPrompt returns the category whose prompt is exactly text.
func CategoryForPrompt(text string) (Category, bool) {
	for c, info := range categoryTable {
		if info.prompt == text {
			return c, true
		}
	}
	return 0, false
}

// NormalizeKey turns a human name into the key pages are stored and looked up by.
// Ingestion and lookups must both go through it.
func NormalizeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
