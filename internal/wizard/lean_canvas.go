package wizard

import (
	"context"
	"sync"

	"conceptcraft/internal/ai"
	"conceptcraft/internal/concept/model"
	"conceptcraft/internal/concept/service"
)

// LeanCanvasController runs the third wizard step. Unlike the first two steps
// there is no separate review phase: the nine boxes are edited directly in
// the build phase, with per-section AI suggestions, and committed as a whole.
type LeanCanvasController struct {
	svc    *service.ConceptService
	gw     *ai.Gateway
	userID string

	mu         sync.Mutex
	fsm        *machine
	generating bool
	canvas     model.LeanCanvasData
	sources    map[string]ai.Source
}

var leanCanvasTransitions = map[Phase][]Phase{
	PhaseBuild:    {PhaseComplete},
	PhaseComplete: {PhaseBuild},
}

func newLeanCanvasController(userID string, svc *service.ConceptService, gw *ai.Gateway, concept *model.BusinessConcept) *LeanCanvasController {
	c := &LeanCanvasController{
		svc:     svc,
		gw:      gw,
		userID:  userID,
		fsm:     newMachine(PhaseBuild, leanCanvasTransitions),
		sources: make(map[string]ai.Source),
	}
	if concept != nil {
		if concept.LeanCanvasData != nil {
			c.fsm = newMachine(PhaseComplete, leanCanvasTransitions)
			c.canvas = *concept.LeanCanvasData
		} else {
			// Seed the problem and solution boxes from the committed
			// statements so the canvas starts from prior steps.
			c.canvas.Problem = concept.ProblemStatement
			c.canvas.Solution = concept.SolutionStatement
		}
	}
	return c
}

func (c *LeanCanvasController) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fsm.current()
}

func (c *LeanCanvasController) Canvas() model.LeanCanvasData {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canvas
}

// SectionSources reports per-section provenance for boxes filled by the
// gateway during this session.
func (c *LeanCanvasController) SectionSources() map[string]ai.Source {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]ai.Source, len(c.sources))
	for k, v := range c.sources {
		out[k] = v
	}
	return out
}

// UpdateSection free-edits one canvas box during the build phase.
func (c *LeanCanvasController) UpdateSection(section, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fsm.current() != PhaseBuild {
		return ErrNotAvailable
	}
	if !c.setSection(section, content) {
		return ValidationError("Unknown lean canvas section: " + section)
	}
	delete(c.sources, section)
	return nil
}

// GenerateSection asks the gateway for a suggestion for one AI-generatable
// canvas box and writes it into the draft.
func (c *LeanCanvasController) GenerateSection(ctx context.Context, section string) (ai.CanvasSectionResult, error) {
	if !ai.GeneratableCanvasSection(section) {
		return ai.CanvasSectionResult{}, ValidationError("This canvas section does not support AI suggestions.")
	}

	concept, err := c.svc.Concept(c.userID)
	if err != nil {
		return ai.CanvasSectionResult{}, err
	}
	if concept == nil || concept.ProblemStatement == "" || concept.SolutionStatement == "" {
		return ai.CanvasSectionResult{}, ValidationError("Please complete the Problem/Solution step first.")
	}

	c.mu.Lock()
	if c.generating {
		c.mu.Unlock()
		return ai.CanvasSectionResult{}, ErrGenerationInFlight
	}
	if c.fsm.current() != PhaseBuild {
		c.mu.Unlock()
		return ai.CanvasSectionResult{}, ErrNotAvailable
	}
	c.generating = true
	c.mu.Unlock()

	result := c.gw.GenerateLeanCanvasSection(ctx, ai.LeanCanvasInput{
		ProblemStatement:  concept.ProblemStatement,
		SolutionStatement: concept.SolutionStatement,
		TargetPersona:     concept.TargetPersonaDescription,
		Section:           section,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.generating = false
	c.setSection(section, result.Content)
	c.sources[section] = result.Source
	return result, nil
}

// Save commits the whole canvas onto the concept and advances the pointer.
func (c *LeanCanvasController) Save() (*model.BusinessConcept, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fsm.current() != PhaseBuild {
		return nil, ErrNotAvailable
	}

	canvas := c.canvas
	concept, err := c.svc.CommitStep(c.userID, model.ConceptUpdate{
		LeanCanvasData: &canvas,
	}, StepLeanCanvas+1)
	if err != nil {
		return nil, err
	}
	if err := c.fsm.to(PhaseComplete); err != nil {
		return nil, err
	}
	return concept, nil
}

// Edit reopens a committed canvas for direct re-editing.
func (c *LeanCanvasController) Edit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fsm.to(PhaseBuild)
}

func (c *LeanCanvasController) setSection(section, content string) bool {
	switch section {
	case "problem":
		c.canvas.Problem = content
	case "solution":
		c.canvas.Solution = content
	case "keyMetrics":
		c.canvas.KeyMetrics = content
	case "uniqueValueProposition":
		c.canvas.UniqueValueProposition = content
	case "unfairAdvantage":
		c.canvas.UnfairAdvantage = content
	case "channels":
		c.canvas.Channels = content
	case "customerSegments":
		c.canvas.CustomerSegments = content
	case "costStructure":
		c.canvas.CostStructure = content
	case "revenueStreams":
		c.canvas.RevenueStreams = content
	default:
		return false
	}
	return true
}
