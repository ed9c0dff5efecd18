package wizard

import (
	"context"
	"sync"

	"conceptcraft/internal/ai"
	"conceptcraft/internal/concept/model"
	"conceptcraft/internal/concept/service"
)

// StepProblemSolution .. StepPitchDeck are the wizard step indices the
// current-step pointer is advanced past: committing step N sets it to N+1.
const (
	StepProblemSolution = 0
	StepPersona         = 1
	StepLeanCanvas      = 2
	StepPitchDeck       = 3
)

// ProblemSolutionDraft is the editable result of a problem/solution
// generation.
type ProblemSolutionDraft struct {
	ProblemStatement  string    `json:"problemStatement"`
	SolutionStatement string    `json:"solutionStatement"`
	Source            ai.Source `json:"source"`
}

// ProblemSolutionController runs the first wizard step. It collects the four
// idea fields, generates paired problem and solution statements, and commits
// them onto the concept.
type ProblemSolutionController struct {
	svc    *service.ConceptService
	gw     *ai.Gateway
	userID string

	mu         sync.Mutex
	fsm        *machine
	generating bool
	input      ai.ProblemSolutionInput
	draft      ProblemSolutionDraft
}

var problemSolutionTransitions = map[Phase][]Phase{
	PhaseInput:    {PhaseReview},
	PhaseReview:   {PhaseInput, PhaseComplete},
	PhaseComplete: {PhaseReview},
}

func newProblemSolutionController(userID string, svc *service.ConceptService, gw *ai.Gateway, concept *model.BusinessConcept) *ProblemSolutionController {
	c := &ProblemSolutionController{
		svc:    svc,
		gw:     gw,
		userID: userID,
		fsm:    newMachine(PhaseInput, problemSolutionTransitions),
	}
	// A concept that already carries committed statements re-enters this
	// step directly in the complete phase.
	if concept != nil && concept.ProblemStatement != "" && concept.SolutionStatement != "" {
		c.fsm = newMachine(PhaseComplete, problemSolutionTransitions)
		c.draft = ProblemSolutionDraft{
			ProblemStatement:  concept.ProblemStatement,
			SolutionStatement: concept.SolutionStatement,
		}
	}
	return c
}

func (c *ProblemSolutionController) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fsm.current()
}

func (c *ProblemSolutionController) Draft() ProblemSolutionDraft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// SetInput records the raw idea fields while the step is in its input phase.
func (c *ProblemSolutionController) SetInput(input ai.ProblemSolutionInput) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fsm.current() != PhaseInput {
		return ErrNotAvailable
	}
	c.input = input
	return nil
}

// Generate invokes the gateway with the collected inputs and moves to review.
// Calling it again from review regenerates with the same inputs, overwriting
// the draft. A second call while one is in flight is rejected.
func (c *ProblemSolutionController) Generate(ctx context.Context) (ProblemSolutionDraft, error) {
	c.mu.Lock()
	if c.generating {
		c.mu.Unlock()
		return ProblemSolutionDraft{}, ErrGenerationInFlight
	}
	phase := c.fsm.current()
	if phase != PhaseInput && phase != PhaseReview {
		c.mu.Unlock()
		return ProblemSolutionDraft{}, ErrNotAvailable
	}
	if c.input.TargetAudience == "" || c.input.ProblemDescription == "" || c.input.SolutionIdea == "" {
		c.mu.Unlock()
		return ProblemSolutionDraft{}, ValidationError("Please fill in all required fields before generating.")
	}
	input := c.input
	c.generating = true
	c.mu.Unlock()

	result := c.gw.GenerateProblemSolution(ctx, input)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.generating = false
	c.draft = ProblemSolutionDraft{
		ProblemStatement:  result.ProblemStatement,
		SolutionStatement: result.SolutionStatement,
		Source:            result.Source,
	}
	if err := c.fsm.to(PhaseReview); err != nil {
		return ProblemSolutionDraft{}, err
	}
	return c.draft, nil
}

// UpdateDraft free-edits the generated statements during review.
func (c *ProblemSolutionController) UpdateDraft(problem, solution string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fsm.current() != PhaseReview {
		return ErrNotAvailable
	}
	c.draft.ProblemStatement = problem
	c.draft.SolutionStatement = solution
	return nil
}

// Save commits the draft onto the concept and advances the step pointer.
func (c *ProblemSolutionController) Save() (*model.BusinessConcept, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fsm.current() != PhaseReview {
		return nil, ErrNotAvailable
	}

	concept, err := c.svc.CommitStep(c.userID, model.ConceptUpdate{
		ProblemStatement:  &c.draft.ProblemStatement,
		SolutionStatement: &c.draft.SolutionStatement,
	}, StepProblemSolution+1)
	if err != nil {
		return nil, err
	}
	// The phase only advances once the store accepted the commit.
	if err := c.fsm.to(PhaseComplete); err != nil {
		return nil, err
	}
	return concept, nil
}

// Edit demotes a completed step back to review for re-editing.
func (c *ProblemSolutionController) Edit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fsm.to(PhaseReview)
}

// Back returns from review to the input phase.
func (c *ProblemSolutionController) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fsm.to(PhaseInput)
}
