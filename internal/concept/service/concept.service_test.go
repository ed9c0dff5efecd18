package service

import (
	"encoding/json"
	"testing"
	"time"

	"conceptcraft/internal/concept/model"
	"conceptcraft/internal/concept/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *ConceptService {
	t.Helper()
	return NewConceptService(repository.NewMemoryStore())
}

func TestCreateConceptStartsEmpty(t *testing.T) {
	svc := newTestService(t)

	concept, err := svc.CreateConcept("u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", concept.UserID)
	assert.Empty(t, concept.ProblemStatement)
	assert.Empty(t, concept.SolutionStatement)
	assert.Empty(t, concept.TargetPersonaDescription)
	assert.Nil(t, concept.LeanCanvasData)
	assert.Empty(t, concept.PitchDeckSlidesData)

	step, err := svc.CurrentStep("u1")
	require.NoError(t, err)
	assert.Equal(t, 0, step)
}

func TestCreateConceptReplacesPrevious(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.CreateConcept("u1")
	require.NoError(t, err)
	require.NoError(t, svc.SetCurrentStep("u1", 3))

	second, err := svc.CreateConcept("u1")
	require.NoError(t, err)
	assert.NotEqual(t, first.ConceptID, second.ConceptID)

	step, err := svc.CurrentStep("u1")
	require.NoError(t, err)
	assert.Equal(t, 0, step)
}

func TestUpdateConceptRequiresConcept(t *testing.T) {
	svc := newTestService(t)

	problem := "p"
	_, err := svc.UpdateConcept("ghost", model.ConceptUpdate{ProblemStatement: &problem})
	assert.ErrorIs(t, err, ErrNoActiveConcept)
}

func TestUpdateConceptLeavesOtherFieldsByteIdentical(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateConcept("u1")
	require.NoError(t, err)

	solution := "first the solution"
	before, err := svc.UpdateConcept("u1", model.ConceptUpdate{SolutionStatement: &solution})
	require.NoError(t, err)
	beforeJSON, err := json.Marshal(before)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	problem := "then the problem"
	after, err := svc.UpdateConcept("u1", model.ConceptUpdate{ProblemStatement: &problem})
	require.NoError(t, err)

	assert.Equal(t, "then the problem", after.ProblemStatement)
	assert.Equal(t, "first the solution", after.SolutionStatement)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))

	// Fields outside the update survive a reload byte for byte.
	var beforeMap, afterMap map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(beforeJSON, &beforeMap))
	afterJSON, err := json.Marshal(after)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(afterJSON, &afterMap))
	for _, field := range []string{"conceptId", "userId", "solutionStatement", "targetPersonaDescription", "leanCanvasData", "pitchDeckSlidesData", "createdAt"} {
		assert.Equal(t, string(beforeMap[field]), string(afterMap[field]), field)
	}
}

func TestCommitStepPersistsConceptAndPointer(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateConcept("u1")
	require.NoError(t, err)

	problem := "X"
	solution := "Y"
	committed, err := svc.CommitStep("u1", model.ConceptUpdate{
		ProblemStatement:  &problem,
		SolutionStatement: &solution,
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, "X", committed.ProblemStatement)
	assert.Equal(t, "Y", committed.SolutionStatement)

	reloaded, err := svc.Concept("u1")
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Equal(t, "X", reloaded.ProblemStatement)
	assert.Equal(t, "Y", reloaded.SolutionStatement)
	assert.Nil(t, reloaded.LeanCanvasData)

	step, err := svc.CurrentStep("u1")
	require.NoError(t, err)
	assert.Equal(t, 1, step)
}

func TestCommitStepWithoutConcept(t *testing.T) {
	svc := newTestService(t)

	problem := "p"
	_, err := svc.CommitStep("ghost", model.ConceptUpdate{ProblemStatement: &problem}, 1)
	assert.ErrorIs(t, err, ErrNoActiveConcept)

	step, err := svc.CurrentStep("ghost")
	require.NoError(t, err)
	assert.Equal(t, 0, step)
}

func TestAddPersonaAssignsID(t *testing.T) {
	svc := newTestService(t)

	added, err := svc.AddPersona("u1", model.Persona{Name: "Dana"})
	require.NoError(t, err)
	assert.NotEmpty(t, added.PersonaID)
	assert.Equal(t, "Dana", added.Name)

	second, err := svc.AddPersona("u1", model.Persona{Name: "Omar"})
	require.NoError(t, err)
	assert.NotEqual(t, added.PersonaID, second.PersonaID)

	personas, err := svc.Personas("u1")
	require.NoError(t, err)
	require.Len(t, personas, 2)
	assert.Equal(t, "Dana", personas[0].Name)
	assert.Equal(t, "Omar", personas[1].Name)
}

func TestUsersAreIsolated(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateConcept("u1")
	require.NoError(t, err)

	other, err := svc.Concept("u2")
	require.NoError(t, err)
	assert.Nil(t, other)

	step, err := svc.CurrentStep("u2")
	require.NoError(t, err)
	assert.Equal(t, 0, step)
}
