package story

// Plot is the story outline produced by the plot developer.
type Plot struct {
	Premise       string   `json:"premise"`
	Synopsis      string   `json:"synopsis"`
	Setting       string   `json:"setting"`
	TurningPoints []string `json:"turning_points"`
	Resolution    string   `json:"resolution"`
}

// Character is one member of the cast.
type Character struct {
	Name        string `json:"name"`
	Role        string `json:"role"` // protagonist, antagonist, etc.
	Background  string `json:"background"`
	Arc         string `json:"arc"`
	Personality string `json:"personality"`
}

// Theme captures what the story is about underneath the plot.
type Theme struct {
	MainTheme string   `json:"main_theme"`
	Moral     string   `json:"moral"`
	Subthemes []string `json:"subthemes"`
}

// Screenplay is the structured screenplay outline.
type Screenplay struct {
	Acts      []string `json:"acts"`
	KeyScenes []string `json:"key_scenes"`
	Dialogue  []string `json:"dialogue"`
}

// MarketAnalysis describes audience and positioning.
type MarketAnalysis struct {
	TargetAudience      []string `json:"target_audience"`
	GenrePositioning    string   `json:"genre_positioning"`
	UniqueSellingPoints []string `json:"unique_selling_points"`
	Comparisons         []string `json:"comparisons"`
}
