package wizard

import (
	"sync"

	"conceptcraft/internal/ai"
	"conceptcraft/internal/concept/model"
	"conceptcraft/internal/concept/service"
)

// View is one of the wizard's top-level screens.
type View string

const (
	ViewLanding         View = "landing"
	ViewDashboard       View = "dashboard"
	ViewProblemSolution View = "problem-solution"
	ViewPersona         View = "persona"
	ViewLeanCanvas      View = "lean-canvas"
	ViewPitchDeck       View = "pitch-deck"
	ViewPricing         View = "pricing"
)

var validViews = map[View]bool{
	ViewLanding:         true,
	ViewDashboard:       true,
	ViewProblemSolution: true,
	ViewPersona:         true,
	ViewLeanCanvas:      true,
	ViewPitchDeck:       true,
	ViewPricing:         true,
}

// Session is one authenticated user's wizard: the current view plus the four
// step controllers, each initialized from whatever the store already holds.
// Sessions are created when a user logs in (or lazily on first request after
// a restart) and torn down at logout.
type Session struct {
	UserID string

	mu   sync.Mutex
	view View

	problemSolution *ProblemSolutionController
	persona         *PersonaController
	leanCanvas      *LeanCanvasController
	pitchDeck       *PitchDeckController
}

// NewSession builds a session for an authenticated user. Steps whose fields
// are already committed start in their complete phase.
func NewSession(userID string, svc *service.ConceptService, gw *ai.Gateway) (*Session, error) {
	concept, err := svc.Concept(userID)
	if err != nil {
		return nil, err
	}
	return &Session{
		UserID:          userID,
		view:            ViewDashboard,
		problemSolution: newProblemSolutionController(userID, svc, gw, concept),
		persona:         newPersonaController(userID, svc, gw, concept),
		leanCanvas:      newLeanCanvasController(userID, svc, gw, concept),
		pitchDeck:       newPitchDeckController(userID, svc, gw, concept),
	}, nil
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Navigate moves to the requested view. Navigation is caller-driven: each
// step asks for the next view on "continue"; nothing advances automatically.
func (s *Session) Navigate(v View) (View, error) {
	if !validViews[v] {
		return "", ValidationError("Unknown view: " + string(v))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
	return s.view, nil
}

func (s *Session) ProblemSolution() *ProblemSolutionController {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.problemSolution
}

func (s *Session) Persona() *PersonaController {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persona
}

func (s *Session) LeanCanvas() *LeanCanvasController {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leanCanvas
}

func (s *Session) PitchDeck() *PitchDeckController {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pitchDeck
}

// Reload rebuilds the step controllers from the store, e.g. after the active
// concept is replaced from the dashboard.
func (s *Session) Reload(svc *service.ConceptService, gw *ai.Gateway) error {
	concept, err := svc.Concept(s.UserID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.problemSolution = newProblemSolutionController(s.UserID, svc, gw, concept)
	s.persona = newPersonaController(s.UserID, svc, gw, concept)
	s.leanCanvas = newLeanCanvasController(s.UserID, svc, gw, concept)
	s.pitchDeck = newPitchDeckController(s.UserID, svc, gw, concept)
	return nil
}

// Summary is the orchestrator snapshot handed to clients.
type Summary struct {
	View        View                   `json:"view"`
	CurrentStep int                    `json:"currentStep"`
	Phases      map[string]Phase       `json:"phases"`
	Concept     *model.BusinessConcept `json:"concept"`
}
