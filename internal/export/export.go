// Package export renders a committed business concept for download. It
// consumes the concept read-only; PDF and image rendering stay external.
package export

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"conceptcraft/internal/concept/model"
)

// Bundle is the JSON export payload: the concept plus its personas.
type Bundle struct {
	Concept    *model.BusinessConcept `json:"concept"`
	Personas   []model.Persona        `json:"personas"`
	ExportedAt time.Time              `json:"exportedAt"`
}

func JSON(concept *model.BusinessConcept, personas []model.Persona) ([]byte, error) {
	bundle := Bundle{
		Concept:    concept,
		Personas:   personas,
		ExportedAt: time.Now().UTC(),
	}
	return json.MarshalIndent(bundle, "", "  ")
}

// DeckMarkdown renders the pitch deck as a markdown document, one section
// per slide in presentation order.
func DeckMarkdown(concept *model.BusinessConcept) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Pitch Deck\n")
	for i, slide := range concept.PitchDeckSlidesData {
		fmt.Fprintf(&b, "\n## %d. %s\n\n%s\n", i+1, slide.Title, slide.Content)
	}
	return b.String()
}
