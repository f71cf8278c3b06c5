package transcript

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Viewer displays transcripts
type Viewer struct{}

// NewViewer creates a viewer
func NewViewer() *Viewer {
	return &Viewer{}
}

// ViewFull displays the complete transcript
func (v *Viewer) ViewFull(w io.Writer, t *Transcript) error {
	v.writeHeader(w, t)
	for _, turn := range t.Turns {
		v.writeTurn(w, turn)
	}
	return nil
}

// ViewSummary displays one line per turn.
func (v *Viewer) ViewSummary(w io.Writer, t *Transcript) error {
	v.writeHeader(w, t)

	fmt.Fprintln(w, "\nTurn Summary:")
	for _, turn := range t.Turns {
		preview := strings.ReplaceAll(truncate(turn.Content, 100), "\n", " ")
		fmt.Fprintf(w, "  [%d] %s/%s: %s\n", turn.ID, agentOrDash(turn.Agent), turn.Role, preview)
	}
	return nil
}

func (v *Viewer) writeHeader(w io.Writer, t *Transcript) {
	sep := strings.Repeat("=", 60)

	fmt.Fprintln(w, sep)
	fmt.Fprintf(w, "Run: %s\n", t.RunID)
	fmt.Fprintf(w, "Flow: %s | Status: %s | Segments: %d\n", t.Metadata.FlowID, t.Metadata.Status, t.Metadata.Segments)
	fmt.Fprintf(w, "Started: %s | Duration: %s\n",
		t.Metadata.StartedAt.Format("2006-01-02 15:04:05"),
		t.Duration().Round(time.Second))
	fmt.Fprintf(w, "Tokens: %d in / %d out\n", t.Metadata.TotalTokensIn, t.Metadata.TotalTokensOut)

	if t.Metadata.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", t.Metadata.Error)
	}

	fmt.Fprintln(w, sep)
}

func (v *Viewer) writeTurn(w io.Writer, turn Turn) {
	fmt.Fprintln(w)

	header := fmt.Sprintf("[%d] %s %s (%s)",
		turn.ID,
		agentOrDash(turn.Agent),
		strings.ToUpper(turn.Role),
		turn.Timestamp.Format("15:04:05"))

	if turn.TokensIn > 0 {
		header += fmt.Sprintf(" [%d tokens in]", turn.TokensIn)
	}
	if turn.TokensOut > 0 {
		header += fmt.Sprintf(" [%d tokens out]", turn.TokensOut)
	}
	if turn.DurationMs > 0 {
		header += fmt.Sprintf(" [%dms]", turn.DurationMs)
	}

	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintln(w, turn.Content)
}

// ExportMarkdown exports to markdown format
func (v *Viewer) ExportMarkdown(w io.Writer, t *Transcript) error {
	fmt.Fprintf(w, "# Transcript: %s\n\n", t.RunID)

	fmt.Fprintf(w, "## Metadata\n\n")
	fmt.Fprintf(w, "| Field | Value |\n")
	fmt.Fprintf(w, "|-------|-------|\n")
	fmt.Fprintf(w, "| Flow | %s |\n", t.Metadata.FlowID)
	fmt.Fprintf(w, "| Status | %s |\n", t.Metadata.Status)
	fmt.Fprintf(w, "| Started | %s |\n", t.Metadata.StartedAt.Format(time.RFC3339))
	if !t.Metadata.EndedAt.IsZero() {
		fmt.Fprintf(w, "| Ended | %s |\n", t.Metadata.EndedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "| Segments | %d |\n", t.Metadata.Segments)
	fmt.Fprintf(w, "| Tokens In | %d |\n", t.Metadata.TotalTokensIn)
	fmt.Fprintf(w, "| Tokens Out | %d |\n", t.Metadata.TotalTokensOut)
	if t.Metadata.Error != "" {
		fmt.Fprintf(w, "| Error | %s |\n", t.Metadata.Error)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "## Conversation\n\n")
	for _, turn := range t.Turns {
		fmt.Fprintf(w, "### %s %s (Turn %d)\n\n", agentOrDash(turn.Agent), title(turn.Role), turn.ID)
		if turn.TokensIn > 0 {
			fmt.Fprintf(w, "*%d tokens in*\n\n", turn.TokensIn)
		}
		if turn.TokensOut > 0 {
			fmt.Fprintf(w, "*%d tokens out*\n\n", turn.TokensOut)
		}
		fmt.Fprintf(w, "%s\n\n", turn.Content)
	}

	return nil
}

// ExportJSON exports to JSON format
func (v *Viewer) ExportJSON(w io.Writer, t *Transcript) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(t)
}

// FormatMetaList formats a list of metadata for display
func (v *Viewer) FormatMetaList(w io.Writer, metas []Meta) error {
	if len(metas) == 0 {
		fmt.Fprintln(w, "No runs found.")
		return nil
	}

	fmt.Fprintf(w, "%-24s %-10s %-17s %12s %6s\n", "RUN ID", "STATUS", "STARTED", "TOKENS", "TURNS")
	fmt.Fprintln(w, strings.Repeat("-", 73))

	for _, m := range metas {
		fmt.Fprintf(w, "%-24s %-10s %-17s %12s %6d\n",
			truncate(m.RunID, 24),
			m.Status,
			m.StartedAt.Format("2006-01-02 15:04"),
			fmt.Sprintf("%d/%d", m.TotalTokensIn, m.TotalTokensOut),
			m.TurnCount)
	}

	fmt.Fprintf(w, "\nTotal: %d runs\n", len(metas))
	return nil
}

func agentOrDash(agent string) string {
	if agent == "" {
		return "-"
	}
	return agent
}

// title capitalizes the first letter
func title(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// truncate shortens a string to max length
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
