// Package profile stores the experience profiles an analysis is scored
// against. Each profile is an ordered list of blocks; only visible blocks
// are rendered into the model prompt.
package profile

import (
	"fmt"
	"strings"
	"time"
)

type Block struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Organization string   `json:"organization,omitempty"`
	DateRange    string   `json:"date_range,omitempty"`
	Bullets      []string `json:"bullets"`
	Visible      bool     `json:"visible"`
}

type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Blocks    []Block   `json:"blocks"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Render flattens the profile into prompt text. Hidden blocks are
// skipped entirely, including their ids.
func (p *Profile) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Profile %q (id: %s)\n", p.Name, p.ID)
	for _, block := range p.Blocks {
		if !block.Visible {
			continue
		}
		fmt.Fprintf(&b, "- [%s] %s", block.ID, block.Title)
		if block.Organization != "" {
			fmt.Fprintf(&b, " at %s", block.Organization)
		}
		if block.DateRange != "" {
			fmt.Fprintf(&b, " (%s)", block.DateRange)
		}
		b.WriteString("\n")
		for _, bullet := range block.Bullets {
			fmt.Fprintf(&b, "  * %s\n", bullet)
		}
	}
	return b.String()
}

// PromptContext renders all profiles into a single context section for
// the analyzer.
func PromptContext(profiles []Profile) string {
	if len(profiles) == 0 {
		return "No resume profiles are available."
	}
	parts := make([]string, 0, len(profiles))
	for i := range profiles {
		parts = append(parts, profiles[i].Render())
	}
	return strings.Join(parts, "\n")
}
