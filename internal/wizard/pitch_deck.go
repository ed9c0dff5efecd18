package wizard

import (
	"context"
	"sync"

	"conceptcraft/internal/ai"
	"conceptcraft/internal/concept/model"
	"conceptcraft/internal/concept/service"
)

// defaultSlideTypes is what the select phase starts with.
var defaultSlideTypes = []model.SlideType{
	model.SlideProblem,
	model.SlideSolution,
	model.SlideMarket,
	model.SlideBusinessModel,
}

// PitchDeckController runs the final wizard step: choosing slide types,
// generating each slide independently, rearranging the deck, and committing
// it onto the concept.
type PitchDeckController struct {
	svc    *service.ConceptService
	gw     *ai.Gateway
	userID string

	mu         sync.Mutex
	fsm        *machine
	generating bool
	selected   []model.SlideType
	slides     []ai.SlideResult
}

var pitchDeckTransitions = map[Phase][]Phase{
	PhaseSelect:   {PhaseReview},
	PhaseReview:   {PhaseSelect, PhaseComplete},
	PhaseComplete: {PhaseSelect},
}

func newPitchDeckController(userID string, svc *service.ConceptService, gw *ai.Gateway, concept *model.BusinessConcept) *PitchDeckController {
	c := &PitchDeckController{
		svc:      svc,
		gw:       gw,
		userID:   userID,
		fsm:      newMachine(PhaseSelect, pitchDeckTransitions),
		selected: append([]model.SlideType(nil), defaultSlideTypes...),
	}
	if concept != nil && len(concept.PitchDeckSlidesData) > 0 {
		c.fsm = newMachine(PhaseComplete, pitchDeckTransitions)
		for _, s := range concept.PitchDeckSlidesData {
			c.slides = append(c.slides, ai.SlideResult{PitchDeckSlide: s})
		}
	}
	return c
}

func (c *PitchDeckController) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fsm.current()
}

func (c *PitchDeckController) Slides() []ai.SlideResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ai.SlideResult(nil), c.slides...)
}

func (c *PitchDeckController) SelectedTypes() []model.SlideType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.SlideType(nil), c.selected...)
}

// SetSlideTypes replaces the selection during the select phase.
func (c *PitchDeckController) SetSlideTypes(types []model.SlideType) error {
	for _, t := range types {
		if !t.Valid() {
			return ValidationError("Unknown slide type: " + string(t))
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fsm.current() != PhaseSelect {
		return ErrNotAvailable
	}
	c.selected = append([]model.SlideType(nil), types...)
	return nil
}

// Generate issues one gateway call per selected slide type and moves to
// review. Slide failures degrade per slide, not all-or-nothing.
func (c *PitchDeckController) Generate(ctx context.Context) ([]ai.SlideResult, error) {
	concept, err := c.svc.Concept(c.userID)
	if err != nil {
		return nil, err
	}
	if concept == nil || concept.ProblemStatement == "" || concept.SolutionStatement == "" {
		return nil, ValidationError("Please complete the Problem/Solution step first.")
	}

	c.mu.Lock()
	if c.generating {
		c.mu.Unlock()
		return nil, ErrGenerationInFlight
	}
	phase := c.fsm.current()
	if phase != PhaseSelect && phase != PhaseReview {
		c.mu.Unlock()
		return nil, ErrNotAvailable
	}
	if len(c.selected) == 0 {
		c.mu.Unlock()
		return nil, ValidationError("Please select at least one slide type.")
	}
	selected := append([]model.SlideType(nil), c.selected...)
	c.generating = true
	c.mu.Unlock()

	results := c.gw.GeneratePitchDeckSlides(ctx, ai.PitchDeckInput{
		ProblemStatement:  concept.ProblemStatement,
		SolutionStatement: concept.SolutionStatement,
		TargetPersona:     concept.TargetPersonaDescription,
		LeanCanvas:        concept.LeanCanvasData,
		SlideTypes:        selected,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.generating = false
	c.slides = results
	if err := c.fsm.to(PhaseReview); err != nil {
		return nil, err
	}
	return append([]ai.SlideResult(nil), c.slides...), nil
}

// EditSlide rewrites one slide's title and content during review.
func (c *PitchDeckController) EditSlide(index int, title, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fsm.current() != PhaseReview {
		return ErrNotAvailable
	}
	if index < 0 || index >= len(c.slides) {
		return ValidationError("Slide index out of range.")
	}
	c.slides[index].Title = title
	c.slides[index].Content = content
	return nil
}

// AddSlide appends a blank slide of the given type to the deck.
func (c *PitchDeckController) AddSlide(slideType model.SlideType) error {
	if !slideType.Valid() {
		return ValidationError("Unknown slide type: " + string(slideType))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fsm.current() != PhaseReview {
		return ErrNotAvailable
	}
	c.slides = append(c.slides, ai.SlideResult{
		PitchDeckSlide: model.PitchDeckSlide{
			Title:     "New Slide",
			Content:   "Add your content here...",
			SlideType: slideType,
		},
	})
	return nil
}

func (c *PitchDeckController) RemoveSlide(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fsm.current() != PhaseReview {
		return ErrNotAvailable
	}
	if index < 0 || index >= len(c.slides) {
		return ValidationError("Slide index out of range.")
	}
	c.slides = append(c.slides[:index], c.slides[index+1:]...)
	return nil
}

// MoveSlide reorders the deck by moving the slide at from to position to.
func (c *PitchDeckController) MoveSlide(from, to int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fsm.current() != PhaseReview {
		return ErrNotAvailable
	}
	if from < 0 || from >= len(c.slides) || to < 0 || to >= len(c.slides) {
		return ValidationError("Slide index out of range.")
	}
	slide := c.slides[from]
	c.slides = append(c.slides[:from], c.slides[from+1:]...)
	c.slides = append(c.slides[:to], append([]ai.SlideResult{slide}, c.slides[to:]...)...)
	return nil
}

// Save commits the deck in its current order and advances the step pointer.
func (c *PitchDeckController) Save() (*model.BusinessConcept, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fsm.current() != PhaseReview {
		return nil, ErrNotAvailable
	}

	deck := make([]model.PitchDeckSlide, 0, len(c.slides))
	for _, s := range c.slides {
		deck = append(deck, s.PitchDeckSlide)
	}
	concept, err := c.svc.CommitStep(c.userID, model.ConceptUpdate{
		PitchDeckSlidesData: deck,
	}, StepPitchDeck+1)
	if err != nil {
		return nil, err
	}
	if err := c.fsm.to(PhaseComplete); err != nil {
		return nil, err
	}
	return concept, nil
}

// Edit reopens a committed deck at the slide type selection.
func (c *PitchDeckController) Edit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fsm.to(PhaseSelect)
}

// Back returns from review to the selection phase.
func (c *PitchDeckController) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fsm.to(PhaseSelect)
}
