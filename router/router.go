package router

import (
	"net/http"

	handlers "conceptcraft/handler"
	"conceptcraft/internal/ai"
	"conceptcraft/internal/auth"
	"conceptcraft/internal/concept/service"
	"conceptcraft/internal/subscription"
	"conceptcraft/internal/wizard"
	"conceptcraft/middleware"
	"conceptcraft/socket"
)

// Setup wires every route. All wizard routes sit behind the auth middleware;
// only landing-page concerns (signup, login, pricing) are public.
func Setup(concepts *service.ConceptService, subs *subscription.Service, authSvc *auth.Service, gw *ai.Gateway, hub *socket.Hub) http.Handler {
	mux := http.NewServeMux()

	orch := wizard.NewOrchestrator(concepts, gw)
	authHandler := &handlers.AuthHandler{Auth: authSvc, Orch: orch}
	wizardHandler := &handlers.WizardHandler{
		Orch:     orch,
		Concepts: concepts,
		Subs:     subs,
		Auth:     authSvc,
		Hub:      hub,
	}
	authed := middleware.AuthMiddleware

	// WebSocket update feed
	wsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		socket.ServeWs(hub, w, r, userID)
	})
	mux.Handle("/ws", authed(wsHandler))

	// Public
	mux.HandleFunc("/api/auth/signup", authHandler.Signup)
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/pricing", wizardHandler.GetPricing)

	// Session
	mux.Handle("/api/auth/logout", authed(http.HandlerFunc(authHandler.Logout)))

	// Orchestrator
	mux.Handle("/api/wizard", authed(http.HandlerFunc(wizardHandler.GetWizard)))
	mux.Handle("/api/wizard/navigate", authed(http.HandlerFunc(wizardHandler.Navigate)))

	// Concept lifecycle
	mux.Handle("/api/concepts", authed(http.HandlerFunc(wizardHandler.GetConcept)))
	mux.Handle("/api/concepts/create", authed(http.HandlerFunc(wizardHandler.CreateConcept)))

	// Problem/Solution step
	mux.Handle("/api/steps/problem-solution/generate", authed(http.HandlerFunc(wizardHandler.ProblemSolutionGenerate)))
	mux.Handle("/api/steps/problem-solution/draft", authed(http.HandlerFunc(wizardHandler.ProblemSolutionDraft)))
	mux.Handle("/api/steps/problem-solution/save", authed(http.HandlerFunc(wizardHandler.ProblemSolutionSave)))
	mux.Handle("/api/steps/problem-solution/edit", authed(http.HandlerFunc(wizardHandler.ProblemSolutionEdit)))

	// Persona step
	mux.Handle("/api/steps/persona/generate", authed(http.HandlerFunc(wizardHandler.PersonaGenerate)))
	mux.Handle("/api/steps/persona/draft", authed(http.HandlerFunc(wizardHandler.PersonaDraft)))
	mux.Handle("/api/steps/persona/save", authed(http.HandlerFunc(wizardHandler.PersonaSave)))
	mux.Handle("/api/steps/persona/edit", authed(http.HandlerFunc(wizardHandler.PersonaEdit)))

	// Lean Canvas step
	mux.Handle("/api/steps/lean-canvas", authed(http.HandlerFunc(wizardHandler.LeanCanvasGet)))
	mux.Handle("/api/steps/lean-canvas/generate", authed(http.HandlerFunc(wizardHandler.LeanCanvasGenerate)))
	mux.Handle("/api/steps/lean-canvas/draft", authed(http.HandlerFunc(wizardHandler.LeanCanvasDraft)))
	mux.Handle("/api/steps/lean-canvas/save", authed(http.HandlerFunc(wizardHandler.LeanCanvasSave)))
	mux.Handle("/api/steps/lean-canvas/edit", authed(http.HandlerFunc(wizardHandler.LeanCanvasEdit)))

	// Pitch Deck step
	mux.Handle("/api/steps/pitch-deck", authed(http.HandlerFunc(wizardHandler.PitchDeckGet)))
	mux.Handle("/api/steps/pitch-deck/types", authed(http.HandlerFunc(wizardHandler.PitchDeckTypes)))
	mux.Handle("/api/steps/pitch-deck/generate", authed(http.HandlerFunc(wizardHandler.PitchDeckGenerate)))
	mux.Handle("/api/steps/pitch-deck/slides/edit", authed(http.HandlerFunc(wizardHandler.PitchDeckSlideEdit)))
	mux.Handle("/api/steps/pitch-deck/slides/add", authed(http.HandlerFunc(wizardHandler.PitchDeckSlideAdd)))
	mux.Handle("/api/steps/pitch-deck/slides/remove", authed(http.HandlerFunc(wizardHandler.PitchDeckSlideRemove)))
	mux.Handle("/api/steps/pitch-deck/slides/move", authed(http.HandlerFunc(wizardHandler.PitchDeckSlideMove)))
	mux.Handle("/api/steps/pitch-deck/save", authed(http.HandlerFunc(wizardHandler.PitchDeckSave)))
	mux.Handle("/api/steps/pitch-deck/edit", authed(http.HandlerFunc(wizardHandler.PitchDeckEdit)))

	// Account and export
	mux.Handle("/api/pricing/upgrade", authed(http.HandlerFunc(wizardHandler.UpgradeTier)))
	mux.Handle("/api/usage", authed(http.HandlerFunc(wizardHandler.GetUsage)))
	mux.Handle("/api/export/json", authed(http.HandlerFunc(wizardHandler.ExportJSON)))
	mux.Handle("/api/export/deck", authed(http.HandlerFunc(wizardHandler.ExportDeck)))

	return middleware.CORSMiddleware(mux)
}
