package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlideTypeValid(t *testing.T) {
	for _, st := range SlideTypes {
		assert.True(t, st.Valid(), string(st))
	}
	assert.False(t, SlideType("cover").Valid())
	assert.False(t, SlideType("").Valid())
}

func TestNewBusinessConcept(t *testing.T) {
	concept := NewBusinessConcept("user-1")

	assert.NotEmpty(t, concept.ConceptID)
	assert.Equal(t, "user-1", concept.UserID)
	assert.Empty(t, concept.ProblemStatement)
	assert.Nil(t, concept.LeanCanvasData)
	assert.NotNil(t, concept.PitchDeckSlidesData)
	assert.Empty(t, concept.PitchDeckSlidesData)
	assert.Equal(t, concept.CreatedAt, concept.UpdatedAt)
}

func TestApplyMergesOnlySetFields(t *testing.T) {
	concept := NewBusinessConcept("user-1")
	concept.ProblemStatement = "old problem"
	concept.SolutionStatement = "old solution"
	before := concept.UpdatedAt

	time.Sleep(time.Millisecond)
	problem := "new problem"
	concept.Apply(ConceptUpdate{ProblemStatement: &problem})

	assert.Equal(t, "new problem", concept.ProblemStatement)
	assert.Equal(t, "old solution", concept.SolutionStatement)
	assert.Nil(t, concept.LeanCanvasData)
	assert.True(t, concept.UpdatedAt.After(before))
}

func TestApplyCopiesCanvasAndSlides(t *testing.T) {
	concept := NewBusinessConcept("user-1")

	canvas := LeanCanvasData{Problem: "p", Channels: "c"}
	slides := []PitchDeckSlide{{Title: "T", Content: "C", SlideType: SlideProblem}}
	concept.Apply(ConceptUpdate{LeanCanvasData: &canvas, PitchDeckSlidesData: slides})

	canvas.Problem = "mutated"
	slides[0].Title = "mutated"

	assert.Equal(t, "p", concept.LeanCanvasData.Problem)
	assert.Equal(t, "T", concept.PitchDeckSlidesData[0].Title)
}

func TestApplyEmptySliceClearsDeck(t *testing.T) {
	concept := NewBusinessConcept("user-1")
	concept.PitchDeckSlidesData = []PitchDeckSlide{{Title: "old"}}

	concept.Apply(ConceptUpdate{PitchDeckSlidesData: []PitchDeckSlide{}})
	assert.NotNil(t, concept.PitchDeckSlidesData)
	assert.Empty(t, concept.PitchDeckSlidesData)

	concept.PitchDeckSlidesData = []PitchDeckSlide{{Title: "kept"}}
	concept.Apply(ConceptUpdate{})
	require.Len(t, concept.PitchDeckSlidesData, 1)
	assert.Equal(t, "kept", concept.PitchDeckSlidesData[0].Title)
}

func TestPersonaRoundTrip(t *testing.T) {
	persona := Persona{
		PersonaID:         "p-1",
		BusinessConceptID: "c-1",
		Name:              "Dana the Designer",
		Demographics:      "25-35, urban",
		PainPoints:        []string{"tool sprawl", "feedback loops"},
		Motivations:       []string{"ship faster"},
		Behaviors:         []string{"works async"},
		Description:       "A freelance product designer.",
	}

	raw, err := json.Marshal(persona)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"painPoints"`)

	parsed := ParsePersonaDescription(string(raw))
	assert.Equal(t, persona, parsed)
}

func TestParsePersonaDescriptionFreeText(t *testing.T) {
	parsed := ParsePersonaDescription("Busy founders who hate paperwork.")
	assert.Equal(t, Persona{Description: "Busy founders who hate paperwork."}, parsed)

	parsed = ParsePersonaDescription("  {not json at all")
	assert.Equal(t, "  {not json at all", parsed.Description)
	assert.Empty(t, parsed.Name)
}
