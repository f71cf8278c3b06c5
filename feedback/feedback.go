// Package feedback classifies reviewer feedback into a closed set of
// categories and maps each category to the workflow step it reopens.
//
// Classification is keyword based and case-insensitive. When several
// keywords appear, the first match in this order wins:
//
//	plot > character > theme > screenplay
//
// Example usage:
//
//	cat := feedback.Classify("The characters feel flat")
//	cat.Step() // "create_characters"
package feedback

import "strings"

// Category is the routing classification of one feedback entry.
type Category string

// Category constants.
const (
	// None means no feedback was given.
	None Category = ""

	Plot       Category = "plot"
	Characters Category = "characters"
	Theme      Category = "theme"
	Screenplay Category = "screenplay"

	// Other is feedback that matches no keyword. It ends the run.
	Other Category = "other"
)

// Step names reopened by each category. These mirror the workflow's node IDs.
const (
	StepDevelopPlot      = "develop_plot"
	StepCreateCharacters = "create_characters"
	StepDevelopTheme     = "develop_theme"
	StepWriteScreenplay  = "write_screenplay"
)

// keywords is evaluated in order; the first hit decides the category.
var keywords = []struct {
	word     string
	category Category
}{
	{"plot", Plot},
	{"character", Characters},
	{"theme", Theme},
	{"screenplay", Screenplay},
}

// Classify returns the category for free-text feedback.
// Blank text classifies as None.
func Classify(text string) Category {
	lowered := strings.ToLower(text)
	if strings.TrimSpace(lowered) == "" {
		return None
	}
	for _, kw := range keywords {
		if strings.Contains(lowered, kw.word) {
			return kw.category
		}
	}
	return Other
}

// Step returns the step to restart at, or "" when the run should end.
func (c Category) Step() string {
	switch c {
	case Plot:
		return StepDevelopPlot
	case Characters:
		return StepCreateCharacters
	case Theme:
		return StepDevelopTheme
	case Screenplay:
		return StepWriteScreenplay
	default:
		return ""
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case None, Plot, Characters, Theme, Screenplay, Other:
		return true
	}
	return false
}

// Parse converts a user-supplied category name. Unknown names return false.
func Parse(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c == "character" {
		c = Characters
	}
	if c == None || !c.Valid() {
		return None, false
	}
	return c, true
}

// Entry is one piece of user feedback, tagged with its category when injected.
type Entry struct {
	Text     string   `json:"text"`
	Category Category `json:"category"`
}

// NewEntry classifies text and returns a tagged entry.
func NewEntry(text string) Entry {
	return Entry{Text: text, Category: Classify(text)}
}
