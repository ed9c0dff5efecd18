package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SlideType tags a pitch deck slide with its role in the deck.
type SlideType string

const (
	SlideProblem       SlideType = "problem"
	SlideSolution      SlideType = "solution"
	SlideMarket        SlideType = "market"
	SlideBusinessModel SlideType = "business-model"
	SlideTeam          SlideType = "team"
	SlideFinancial     SlideType = "financial"
)

// SlideTypes lists every valid slide type in presentation order.
var SlideTypes = []SlideType{
	SlideProblem,
	SlideSolution,
	SlideMarket,
	SlideBusinessModel,
	SlideTeam,
	SlideFinancial,
}

func (s SlideType) Valid() bool {
	for _, t := range SlideTypes {
		if s == t {
			return true
		}
	}
	return false
}

type PitchDeckSlide struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	SlideType SlideType `json:"slideType"`
}

// LeanCanvasData holds the nine canvas boxes. The fields carry no invariants
// between them; each is independently editable.
type LeanCanvasData struct {
	Problem                string `json:"problem"`
	Solution               string `json:"solution"`
	KeyMetrics             string `json:"keyMetrics"`
	UniqueValueProposition string `json:"uniqueValueProposition"`
	UnfairAdvantage        string `json:"unfairAdvantage"`
	Channels               string `json:"channels"`
	CustomerSegments       string `json:"customerSegments"`
	CostStructure          string `json:"costStructure"`
	RevenueStreams         string `json:"revenueStreams"`
}

type Persona struct {
	PersonaID         string   `json:"personaId"`
	BusinessConceptID string   `json:"businessConceptId"`
	Name              string   `json:"name"`
	Demographics      string   `json:"demographics"`
	PainPoints        []string `json:"painPoints"`
	Motivations       []string `json:"motivations"`
	Behaviors         []string `json:"behaviors"`
	Description       string   `json:"description"`
}

// BusinessConcept is the root entity of the wizard: the single business idea
// a user is actively developing. Each step owns a slice of its fields and
// merges into them on save.
type BusinessConcept struct {
	ConceptID                string           `json:"conceptId"`
	UserID                   string           `json:"userId"`
	ProblemStatement         string           `json:"problemStatement"`
	SolutionStatement        string           `json:"solutionStatement"`
	TargetPersonaDescription string           `json:"targetPersonaDescription"`
	LeanCanvasData           *LeanCanvasData  `json:"leanCanvasData"`
	PitchDeckSlidesData      []PitchDeckSlide `json:"pitchDeckSlidesData"`
	CreatedAt                time.Time        `json:"createdAt"`
	UpdatedAt                time.Time        `json:"updatedAt"`
}

// NewBusinessConcept creates the empty concept a user starts from.
func NewBusinessConcept(userID string) *BusinessConcept {
	now := time.Now().UTC()
	return &BusinessConcept{
		ConceptID:           uuid.NewString(),
		UserID:              userID,
		PitchDeckSlidesData: []PitchDeckSlide{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// ConceptUpdate is a partial update of a BusinessConcept. Nil fields are left
// untouched by Apply; a step controller only ever sets the fields it owns.
type ConceptUpdate struct {
	ProblemStatement         *string
	SolutionStatement        *string
	TargetPersonaDescription *string
	LeanCanvasData           *LeanCanvasData
	PitchDeckSlidesData      []PitchDeckSlide
}

// Apply merges the update into the concept and refreshes UpdatedAt.
func (c *BusinessConcept) Apply(u ConceptUpdate) {
	if u.ProblemStatement != nil {
		c.ProblemStatement = *u.ProblemStatement
	}
	if u.SolutionStatement != nil {
		c.SolutionStatement = *u.SolutionStatement
	}
	if u.TargetPersonaDescription != nil {
		c.TargetPersonaDescription = *u.TargetPersonaDescription
	}
	if u.LeanCanvasData != nil {
		canvas := *u.LeanCanvasData
		c.LeanCanvasData = &canvas
	}
	if u.PitchDeckSlidesData != nil {
		c.PitchDeckSlidesData = append([]PitchDeckSlide(nil), u.PitchDeckSlidesData...)
	}
	c.UpdatedAt = time.Now().UTC()
}

// ParsePersonaDescription reads a concept's targetPersonaDescription, which
// holds either a JSON-encoded Persona or free text. Free text comes back as a
// Persona with only the Description field set.
func ParsePersonaDescription(s string) Persona {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "{") {
		var p Persona
		if err := json.Unmarshal([]byte(trimmed), &p); err == nil {
			return p
		}
	}
	return Persona{Description: s}
}
