package wizard

import (
	"sync"

	"conceptcraft/internal/ai"
	"conceptcraft/internal/concept/service"
)

// Orchestrator owns the per-user sessions and enforces the auth gate: with
// no authenticated session every view except the landing page resolves back
// to the landing page.
type Orchestrator struct {
	svc *service.ConceptService
	gw  *ai.Gateway

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewOrchestrator(svc *service.ConceptService, gw *ai.Gateway) *Orchestrator {
	return &Orchestrator{
		svc:      svc,
		gw:       gw,
		sessions: make(map[string]*Session),
	}
}

// Session returns the user's wizard session, creating one from stored state
// if needed. Lazy creation covers requests that arrive with a valid token
// after a server restart.
func (o *Orchestrator) Session(userID string) (*Session, error) {
	o.mu.Lock()
	if sess, ok := o.sessions[userID]; ok {
		o.mu.Unlock()
		return sess, nil
	}
	o.mu.Unlock()

	sess, err := NewSession(userID, o.svc, o.gw)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if existing, ok := o.sessions[userID]; ok {
		return existing, nil
	}
	o.sessions[userID] = sess
	return sess, nil
}

// Navigate resolves a view request for a user. An unauthenticated request
// (empty user) is forced back to the landing page regardless of what was
// asked for.
func (o *Orchestrator) Navigate(userID string, requested View) (View, error) {
	if userID == "" {
		return ViewLanding, nil
	}
	sess, err := o.Session(userID)
	if err != nil {
		return "", err
	}
	return sess.Navigate(requested)
}

// End tears a user's session down at logout. The next login starts from the
// persisted state again.
func (o *Orchestrator) End(userID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.sessions, userID)
}

// Reset replaces the user's step controllers after the active concept
// changed out from under them.
func (o *Orchestrator) Reset(userID string) error {
	sess, err := o.Session(userID)
	if err != nil {
		return err
	}
	return sess.Reload(o.svc, o.gw)
}

// Snapshot assembles the orchestrator view handed to clients.
func (o *Orchestrator) Snapshot(userID string) (Summary, error) {
	sess, err := o.Session(userID)
	if err != nil {
		return Summary{}, err
	}
	concept, err := o.svc.Concept(userID)
	if err != nil {
		return Summary{}, err
	}
	step, err := o.svc.CurrentStep(userID)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		View:        sess.View(),
		CurrentStep: step,
		Phases: map[string]Phase{
			"problem-solution": sess.ProblemSolution().Phase(),
			"persona":          sess.Persona().Phase(),
			"lean-canvas":      sess.LeanCanvas().Phase(),
			"pitch-deck":       sess.PitchDeck().Phase(),
		},
		Concept: concept,
	}, nil
}
