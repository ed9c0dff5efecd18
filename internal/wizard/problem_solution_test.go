package wizard

import (
	"context"
	"testing"

	"conceptcraft/internal/ai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validIdeaInput = ai.ProblemSolutionInput{
	TargetAudience:     "independent coffee shops",
	ProblemDescription: "no-shows on reservations",
	SolutionIdea:       "deposit-backed booking",
	UniqueValue:        "zero setup",
}

func TestProblemSolutionHappyPath(t *testing.T) {
	svc, gw := newEnv(t, func(string) string {
		return `{"problemStatement":"No-shows cost money.","solutionStatement":"Deposits fix incentives."}`
	})
	_, err := svc.CreateConcept("u1")
	require.NoError(t, err)

	sess, err := NewSession("u1", svc, gw)
	require.NoError(t, err)
	c := sess.ProblemSolution()
	assert.Equal(t, PhaseInput, c.Phase())

	require.NoError(t, c.SetInput(validIdeaInput))
	draft, err := c.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseReview, c.Phase())
	assert.Equal(t, ai.SourceModel, draft.Source)
	assert.Equal(t, "No-shows cost money.", draft.ProblemStatement)

	require.NoError(t, c.UpdateDraft("Edited problem.", "Deposits fix incentives."))

	concept, err := c.Save()
	require.NoError(t, err)
	assert.Equal(t, PhaseComplete, c.Phase())
	assert.Equal(t, "Edited problem.", concept.ProblemStatement)

	step, err := svc.CurrentStep("u1")
	require.NoError(t, err)
	assert.Equal(t, StepProblemSolution+1, step)
}

func TestProblemSolutionValidation(t *testing.T) {
	svc, gw := newEnv(t, func(string) string { return "{}" })
	_, err := svc.CreateConcept("u1")
	require.NoError(t, err)

	sess, err := NewSession("u1", svc, gw)
	require.NoError(t, err)
	c := sess.ProblemSolution()

	_, err = c.Generate(context.Background())
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Please fill in all required fields before generating.", verr.Error())
	assert.Equal(t, PhaseInput, c.Phase())

	// UniqueValue is the one optional field.
	input := validIdeaInput
	input.UniqueValue = ""
	require.NoError(t, c.SetInput(input))
	_, err = c.Generate(context.Background())
	require.NoError(t, err)
}

func TestProblemSolutionPhaseGuards(t *testing.T) {
	svc, gw := newEnv(t, func(string) string {
		return `{"problemStatement":"P","solutionStatement":"S"}`
	})
	_, err := svc.CreateConcept("u1")
	require.NoError(t, err)

	sess, err := NewSession("u1", svc, gw)
	require.NoError(t, err)
	c := sess.ProblemSolution()

	assert.ErrorIs(t, c.UpdateDraft("a", "b"), ErrNotAvailable)
	_, err = c.Save()
	assert.ErrorIs(t, err, ErrNotAvailable)

	require.NoError(t, c.SetInput(validIdeaInput))
	_, err = c.Generate(context.Background())
	require.NoError(t, err)

	// Inputs are frozen once the step leaves the input phase.
	assert.ErrorIs(t, c.SetInput(validIdeaInput), ErrNotAvailable)

	// Regenerating from review is allowed and overwrites the draft.
	require.NoError(t, c.UpdateDraft("scratch", "scratch"))
	draft, err := c.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "P", draft.ProblemStatement)
}

func TestProblemSolutionRejectsConcurrentGenerate(t *testing.T) {
	svc, gw := newEnv(t, func(string) string { return "{}" })
	_, err := svc.CreateConcept("u1")
	require.NoError(t, err)

	sess, err := NewSession("u1", svc, gw)
	require.NoError(t, err)
	c := sess.ProblemSolution()
	require.NoError(t, c.SetInput(validIdeaInput))

	c.mu.Lock()
	c.generating = true
	c.mu.Unlock()

	_, err = c.Generate(context.Background())
	assert.ErrorIs(t, err, ErrGenerationInFlight)

	c.mu.Lock()
	c.generating = false
	c.mu.Unlock()

	_, err = c.Generate(context.Background())
	require.NoError(t, err)
}

func TestProblemSolutionFallbackDraftIsTagged(t *testing.T) {
	svc, gw := newEnv(t, func(string) string { return "" })
	_, err := svc.CreateConcept("u1")
	require.NoError(t, err)

	sess, err := NewSession("u1", svc, gw)
	require.NoError(t, err)
	c := sess.ProblemSolution()
	require.NoError(t, c.SetInput(validIdeaInput))

	draft, err := c.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ai.SourceFallback, draft.Source)
	assert.NotEmpty(t, draft.ProblemStatement)
	assert.Equal(t, PhaseReview, c.Phase())
}

func TestProblemSolutionResumesComplete(t *testing.T) {
	svc, gw := newEnv(t, func(string) string {
		return `{"problemStatement":"P","solutionStatement":"S"}`
	})
	_, err := svc.CreateConcept("u1")
	require.NoError(t, err)

	sess, err := NewSession("u1", svc, gw)
	require.NoError(t, err)
	c := sess.ProblemSolution()
	require.NoError(t, c.SetInput(validIdeaInput))
	_, err = c.Generate(context.Background())
	require.NoError(t, err)
	_, err = c.Save()
	require.NoError(t, err)

	// A new session over the same stored state re-enters the step complete.
	resumed, err := NewSession("u1", svc, gw)
	require.NoError(t, err)
	c = resumed.ProblemSolution()
	assert.Equal(t, PhaseComplete, c.Phase())
	assert.Equal(t, "P", c.Draft().ProblemStatement)
	assert.Equal(t, "S", c.Draft().SolutionStatement)

	// Edit drops back to review for another pass.
	require.NoError(t, c.Edit())
	assert.Equal(t, PhaseReview, c.Phase())
	require.NoError(t, c.Back())
	assert.Equal(t, PhaseInput, c.Phase())
}
