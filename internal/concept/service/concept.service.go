package service

import (
	"errors"
	"sync"

	"conceptcraft/internal/concept/model"

	"github.com/google/uuid"
)

// ErrNoActiveConcept is returned when an operation needs a concept and the
// user has not created one yet.
var ErrNoActiveConcept = errors.New("no active business concept")

// Store is the persistence collaborator: whole-value reads and writes of the
// three wizard state keys per user. repository.StateRepository and
// repository.MemoryStore both satisfy it.
type Store interface {
	LoadConcept(userID string) (*model.BusinessConcept, error)
	SaveConcept(userID string, concept *model.BusinessConcept) error
	LoadPersonas(userID string) ([]model.Persona, error)
	SavePersonas(userID string, personas []model.Persona) error
	LoadStep(userID string) (int, error)
	SaveStep(userID string, step int) error
}

// ConceptService owns the active BusinessConcept, the persona list, and the
// current-step pointer for each user. Writes go through a per-user lock so
// the store stays single-writer, and every mutation is persisted wholesale.
type ConceptService struct {
	Repo Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewConceptService(repo Store) *ConceptService {
	return &ConceptService{Repo: repo, locks: make(map[string]*sync.Mutex)}
}

func (s *ConceptService) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

// CreateConcept starts a fresh, empty concept for the user and resets the
// step pointer. Any previous concept for the user is replaced.
func (s *ConceptService) CreateConcept(userID string) (*model.BusinessConcept, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	concept := model.NewBusinessConcept(userID)
	if err := s.Repo.SaveConcept(userID, concept); err != nil {
		return nil, err
	}
	if err := s.Repo.SaveStep(userID, 0); err != nil {
		return nil, err
	}
	return concept, nil
}

// Concept returns the user's active concept, or nil when none exists.
func (s *ConceptService) Concept(userID string) (*model.BusinessConcept, error) {
	return s.Repo.LoadConcept(userID)
}

// UpdateConcept partial-merges the update into the active concept and
// persists the result. Fields the update does not set are left as they were.
func (s *ConceptService) UpdateConcept(userID string, update model.ConceptUpdate) (*model.BusinessConcept, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	concept, err := s.Repo.LoadConcept(userID)
	if err != nil {
		return nil, err
	}
	if concept == nil {
		return nil, ErrNoActiveConcept
	}

	concept.Apply(update)
	if err := s.Repo.SaveConcept(userID, concept); err != nil {
		return nil, err
	}
	return concept, nil
}

// CommitStep merges a step controller's draft into the concept and advances
// the current-step pointer in one pass, persisting both.
func (s *ConceptService) CommitStep(userID string, update model.ConceptUpdate, step int) (*model.BusinessConcept, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	concept, err := s.Repo.LoadConcept(userID)
	if err != nil {
		return nil, err
	}
	if concept == nil {
		return nil, ErrNoActiveConcept
	}

	concept.Apply(update)
	if err := s.Repo.SaveConcept(userID, concept); err != nil {
		return nil, err
	}
	if err := s.Repo.SaveStep(userID, step); err != nil {
		return nil, err
	}
	return concept, nil
}

func (s *ConceptService) Personas(userID string) ([]model.Persona, error) {
	return s.Repo.LoadPersonas(userID)
}

// AddPersona appends a persona to the user's list, assigning it an ID.
func (s *ConceptService) AddPersona(userID string, persona model.Persona) (model.Persona, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	persona.PersonaID = uuid.NewString()

	personas, err := s.Repo.LoadPersonas(userID)
	if err != nil {
		return model.Persona{}, err
	}
	personas = append(personas, persona)
	if err := s.Repo.SavePersonas(userID, personas); err != nil {
		return model.Persona{}, err
	}
	return persona, nil
}

func (s *ConceptService) CurrentStep(userID string) (int, error) {
	return s.Repo.LoadStep(userID)
}

func (s *ConceptService) SetCurrentStep(userID string, step int) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	return s.Repo.SaveStep(userID, step)
}
