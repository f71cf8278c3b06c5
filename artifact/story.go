package artifact

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/randalmurphal/storyflow/story"
)

// Standard artifact names written by SaveStory.
const (
	NameState          = "state.json"
	NamePlot           = "plot.json"
	NameCharacters     = "characters.json"
	NameTheme          = "theme.json"
	NameMarketAnalysis = "market_analysis.json"
	NameScreenplay     = "screenplay.md"
)

// SaveStory exports the records of s under its run ID and returns the
// names written. Records the run has not produced yet are skipped.
func (m *Manager) SaveStory(s story.State) ([]string, error) {
	if s.RunID == "" {
		return nil, fmt.Errorf("save story: run ID is empty")
	}

	docs := []struct {
		name string
		v    any
		ok   bool
	}{
		{NameState, s, true},
		{NamePlot, s.Plot, s.Plot != nil},
		{NameCharacters, s.Characters, len(s.Characters) > 0},
		{NameTheme, s.Theme, s.Theme != nil},
		{NameMarketAnalysis, s.MarketAnalysis, s.MarketAnalysis != nil},
	}

	var written []string
	for _, d := range docs {
		if !d.ok {
			continue
		}
		data, err := json.MarshalIndent(d.v, "", "  ")
		if err != nil {
			return written, fmt.Errorf("marshal %s: %w", d.name, err)
		}
		if err := m.Save(s.RunID, d.name, data); err != nil {
			return written, fmt.Errorf("save %s: %w", d.name, err)
		}
		written = append(written, d.name)
	}

	if s.Screenplay != nil {
		if err := m.Save(s.RunID, NameScreenplay, []byte(RenderScreenplay(s))); err != nil {
			return written, fmt.Errorf("save %s: %w", NameScreenplay, err)
		}
		written = append(written, NameScreenplay)
	}
	return written, nil
}

// LoadState reads back the state exported for a run.
func (m *Manager) LoadState(runID string) (story.State, error) {
	data, err := m.Load(runID, NameState)
	if err != nil {
		return story.State{}, err
	}
	var s story.State
	if err := json.Unmarshal(data, &s); err != nil {
		return story.State{}, fmt.Errorf("parse %s: %w", NameState, err)
	}
	return s, nil
}

// RenderScreenplay formats the screenplay with its concept, cast and the
// latest reviews as markdown.
func RenderScreenplay(s story.State) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", s.Concept)
	if s.Theme != nil {
		fmt.Fprintf(&sb, "_%s_\n\n", s.Theme.MainTheme)
	}

	if len(s.Characters) > 0 {
		sb.WriteString("## Cast\n\n")
		for _, c := range s.Characters {
			fmt.Fprintf(&sb, "- **%s** (%s): %s\n", c.Name, c.Role, c.Arc)
		}
		sb.WriteString("\n")
	}

	if sp := s.Screenplay; sp != nil {
		for i, act := range sp.Acts {
			fmt.Fprintf(&sb, "## Act %d\n\n%s\n\n", i+1, act)
		}
		writeList(&sb, "Key Scenes", sp.KeyScenes)
		writeList(&sb, "Dialogue", sp.Dialogue)
	}

	if n := len(s.DirectorNotes); n > 0 {
		fmt.Fprintf(&sb, "## Director's Notes\n\n%s\n\n", s.DirectorNotes[n-1])
	}
	if n := len(s.CriticFeedback); n > 0 {
		fmt.Fprintf(&sb, "## Critic\n\n%s\n", s.CriticFeedback[n-1])
	}
	return sb.String()
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "## %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(sb, "- %s\n", item)
	}
	sb.WriteString("\n")
}
