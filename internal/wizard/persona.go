package wizard

import (
	"context"
	"encoding/json"
	"sync"

	"conceptcraft/internal/ai"
	"conceptcraft/internal/concept/model"
	"conceptcraft/internal/concept/service"
)

// PersonaInput carries the market research hints the user supplies before
// persona generation. All four are optional; the committed problem and
// solution statements are the required upstream fields.
type PersonaInput struct {
	Industry     string `json:"industry"`
	Demographics string `json:"demographics"`
	Behaviors    string `json:"behaviors"`
	Challenges   string `json:"challenges"`
}

type PersonaDraft struct {
	model.Persona
	Source ai.Source `json:"source"`
}

// PersonaController runs the second wizard step: building the target
// customer persona from the committed problem/solution pair.
type PersonaController struct {
	svc    *service.ConceptService
	gw     *ai.Gateway
	userID string

	mu         sync.Mutex
	fsm        *machine
	generating bool
	input      PersonaInput
	draft      PersonaDraft
}

var personaTransitions = map[Phase][]Phase{
	PhaseInput:    {PhaseReview},
	PhaseReview:   {PhaseInput, PhaseComplete},
	PhaseComplete: {PhaseReview},
}

func newPersonaController(userID string, svc *service.ConceptService, gw *ai.Gateway, concept *model.BusinessConcept) *PersonaController {
	c := &PersonaController{
		svc:    svc,
		gw:     gw,
		userID: userID,
		fsm:    newMachine(PhaseInput, personaTransitions),
	}
	if concept != nil && concept.TargetPersonaDescription != "" {
		// The stored description is either a serialized persona or free
		// text; both re-enter the step complete.
		c.fsm = newMachine(PhaseComplete, personaTransitions)
		c.draft = PersonaDraft{Persona: model.ParsePersonaDescription(concept.TargetPersonaDescription)}
	}
	return c
}

func (c *PersonaController) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fsm.current()
}

func (c *PersonaController) Draft() PersonaDraft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

func (c *PersonaController) SetInput(input PersonaInput) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fsm.current() != PhaseInput {
		return ErrNotAvailable
	}
	c.input = input
	return nil
}

// Generate builds a persona from the committed statements plus the research
// hints. The problem/solution step must be completed first.
func (c *PersonaController) Generate(ctx context.Context) (PersonaDraft, error) {
	concept, err := c.svc.Concept(c.userID)
	if err != nil {
		return PersonaDraft{}, err
	}
	if concept == nil || concept.ProblemStatement == "" || concept.SolutionStatement == "" {
		return PersonaDraft{}, ValidationError("Please complete the Problem/Solution step first.")
	}

	c.mu.Lock()
	if c.generating {
		c.mu.Unlock()
		return PersonaDraft{}, ErrGenerationInFlight
	}
	phase := c.fsm.current()
	if phase != PhaseInput && phase != PhaseReview {
		c.mu.Unlock()
		return PersonaDraft{}, ErrNotAvailable
	}
	input := c.input
	c.generating = true
	c.mu.Unlock()

	result := c.gw.GeneratePersona(ctx, ai.PersonaInput{
		ProblemStatement:  concept.ProblemStatement,
		SolutionStatement: concept.SolutionStatement,
		Industry:          input.Industry,
		Demographics:      input.Demographics,
		Behaviors:         input.Behaviors,
		Challenges:        input.Challenges,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.generating = false
	c.draft = PersonaDraft{Persona: result.Persona, Source: result.Source}
	if err := c.fsm.to(PhaseReview); err != nil {
		return PersonaDraft{}, err
	}
	return c.draft, nil
}

// UpdateDraft replaces the editable persona fields during review.
func (c *PersonaController) UpdateDraft(persona model.Persona) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fsm.current() != PhaseReview {
		return ErrNotAvailable
	}
	c.draft.Persona = persona
	return nil
}

// Save serializes the persona into the concept's target persona description,
// appends it to the user's persona list, and advances the step pointer.
func (c *PersonaController) Save() (*model.BusinessConcept, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fsm.current() != PhaseReview {
		return nil, ErrNotAvailable
	}

	concept, err := c.svc.Concept(c.userID)
	if err != nil {
		return nil, err
	}
	if concept == nil {
		return nil, service.ErrNoActiveConcept
	}

	persona := c.draft.Persona
	persona.BusinessConceptID = concept.ConceptID
	encoded, err := json.Marshal(persona)
	if err != nil {
		return nil, err
	}
	description := string(encoded)

	concept, err = c.svc.CommitStep(c.userID, model.ConceptUpdate{
		TargetPersonaDescription: &description,
	}, StepPersona+1)
	if err != nil {
		return nil, err
	}
	if _, err := c.svc.AddPersona(c.userID, persona); err != nil {
		return nil, err
	}
	if err := c.fsm.to(PhaseComplete); err != nil {
		return nil, err
	}
	return concept, nil
}

func (c *PersonaController) Edit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fsm.to(PhaseReview)
}

func (c *PersonaController) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fsm.to(PhaseInput)
}
