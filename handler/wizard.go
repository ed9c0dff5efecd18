package handlers

import (
	"net/http"

	"conceptcraft/internal/ai"
	"conceptcraft/internal/auth"
	"conceptcraft/internal/concept/model"
	"conceptcraft/internal/concept/service"
	"conceptcraft/internal/export"
	"conceptcraft/internal/subscription"
	"conceptcraft/internal/wizard"
	"conceptcraft/middleware"
	"conceptcraft/pkg/logger"
	"conceptcraft/socket"
)

// WizardHandler exposes the wizard core over HTTP: the orchestrator
// snapshot, concept lifecycle, the four step controllers, pricing, and
// export.
type WizardHandler struct {
	Orch     *wizard.Orchestrator
	Concepts *service.ConceptService
	Subs     *subscription.Service
	Auth     *auth.Service
	Hub      *socket.Hub
}

func (h *WizardHandler) tier(userID string) auth.Tier {
	if user, ok := h.Auth.UserByID(userID); ok {
		return user.SubscriptionTier
	}
	// A valid token for an account the registry no longer knows (e.g.
	// after a restart) falls back to the free tier.
	return auth.TierFree
}

// checkAIBudget enforces the tier's monthly generation cap before a step
// controller is allowed to call the gateway.
func (h *WizardHandler) checkAIBudget(w http.ResponseWriter, userID string) bool {
	tier := h.tier(userID)
	ok, err := h.Subs.CanUseAI(userID, tier)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return false
	}
	if !ok {
		respondError(w, http.StatusForbidden, subscription.UpgradeMessage(tier, "more AI generations"))
		return false
	}
	return true
}

func (h *WizardHandler) recordUsage(userID string) {
	if err := h.Subs.RecordAIUsage(userID); err != nil {
		logger.Sugar.Errorf("Failed to record AI usage for %s: %v", userID, err)
	}
}

func (h *WizardHandler) notifyCommit(userID string, concept *model.BusinessConcept) {
	if h.Hub == nil {
		return
	}
	h.Hub.NotifyConceptUpdate(userID, concept)
	if step, err := h.Concepts.CurrentStep(userID); err == nil {
		h.Hub.NotifyStepUpdate(userID, step)
	}
}

func (h *WizardHandler) session(w http.ResponseWriter, userID string) (*wizard.Session, bool) {
	sess, err := h.Orch.Session(userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to load session for %s: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	return sess, true
}

// --- Orchestrator ---

func (h *WizardHandler) GetWizard(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	snapshot, err := h.Orch.Snapshot(userID)
	if err != nil {
		respondStepError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}

func (h *WizardHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req struct {
		View wizard.View `json:"view"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	view, err := h.Orch.Navigate(middleware.UserID(r), req.View)
	if err != nil {
		respondStepError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]wizard.View{"view": view})
}

// --- Concept lifecycle ---

func (h *WizardHandler) CreateConcept(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	userID := middleware.UserID(r)

	concept, err := h.Concepts.CreateConcept(userID)
	if err != nil {
		respondStepError(w, err)
		return
	}
	// The step controllers re-read the fresh concept.
	if err := h.Orch.Reset(userID); err != nil {
		respondStepError(w, err)
		return
	}
	h.notifyCommit(userID, concept)
	respondJSON(w, http.StatusCreated, concept)
}

func (h *WizardHandler) GetConcept(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)

	concept, err := h.Concepts.Concept(userID)
	if err != nil {
		respondStepError(w, err)
		return
	}
	personas, err := h.Concepts.Personas(userID)
	if err != nil {
		respondStepError(w, err)
		return
	}
	step, err := h.Concepts.CurrentStep(userID)
	if err != nil {
		respondStepError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"concept":     concept,
		"personas":    personas,
		"currentStep": step,
	})
}

// --- Problem/Solution step ---

func (h *WizardHandler) ProblemSolutionGenerate(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	userID := middleware.UserID(r)
	var input ai.ProblemSolutionInput
	if !decodeBody(w, r, &input) {
		return
	}
	sess, ok := h.session(w, userID)
	if !ok {
		return
	}
	if !h.checkAIBudget(w, userID) {
		return
	}

	ctrl := sess.ProblemSolution()
	if ctrl.Phase() == wizard.PhaseInput {
		if err := ctrl.SetInput(input); err != nil {
			respondStepError(w, err)
			return
		}
	}
	draft, err := ctrl.Generate(r.Context())
	if err != nil {
		respondStepError(w, err)
		return
	}
	h.recordUsage(userID)
	respondJSON(w, http.StatusOK, map[string]interface{}{"phase": ctrl.Phase(), "draft": draft})
}

func (h *WizardHandler) ProblemSolutionDraft(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req struct {
		ProblemStatement  string `json:"problemStatement"`
		SolutionStatement string `json:"solutionStatement"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	sess, ok := h.session(w, middleware.UserID(r))
	if !ok {
		return
	}
	if err := sess.ProblemSolution().UpdateDraft(req.ProblemStatement, req.SolutionStatement); err != nil {
		respondStepError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess.ProblemSolution().Draft())
}

func (h *WizardHandler) ProblemSolutionSave(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	userID := middleware.UserID(r)
	sess, ok := h.session(w, userID)
	if !ok {
		return
	}
	concept, err := sess.ProblemSolution().Save()
	if err != nil {
		respondStepError(w, err)
		return
	}
	h.notifyCommit(userID, concept)
	respondJSON(w, http.StatusOK, concept)
}

func (h *WizardHandler) ProblemSolutionEdit(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	sess, ok := h.session(w, middleware.UserID(r))
	if !ok {
		return
	}
	if err := sess.ProblemSolution().Edit(); err != nil {
		respondStepError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]wizard.Phase{"phase": sess.ProblemSolution().Phase()})
}

// --- Persona step ---

func (h *WizardHandler) PersonaGenerate(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	userID := middleware.UserID(r)
	var input wizard.PersonaInput
	if !decodeBody(w, r, &input) {
		return
	}
	sess, ok := h.session(w, userID)
	if !ok {
		return
	}
	if !h.checkAIBudget(w, userID) {
		return
	}

	ctrl := sess.Persona()
	if ctrl.Phase() == wizard.PhaseInput {
		if err := ctrl.SetInput(input); err != nil {
			respondStepError(w, err)
			return
		}
	}
	draft, err := ctrl.Generate(r.Context())
	if err != nil {
		respondStepError(w, err)
		return
	}
	h.recordUsage(userID)
	respondJSON(w, http.StatusOK, map[string]interface{}{"phase": ctrl.Phase(), "draft": draft})
}

func (h *WizardHandler) PersonaDraft(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var persona model.Persona
	if !decodeBody(w, r, &persona) {
		return
	}
	sess, ok := h.session(w, middleware.UserID(r))
	if !ok {
		return
	}
	if err := sess.Persona().UpdateDraft(persona); err != nil {
		respondStepError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess.Persona().Draft())
}

func (h *WizardHandler) PersonaSave(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	userID := middleware.UserID(r)
	sess, ok := h.session(w, userID)
	if !ok {
		return
	}
	concept, err := sess.Persona().Save()
	if err != nil {
		respondStepError(w, err)
		return
	}
	h.notifyCommit(userID, concept)
	respondJSON(w, http.StatusOK, concept)
}

func (h *WizardHandler) PersonaEdit(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	sess, ok := h.session(w, middleware.UserID(r))
	if !ok {
		return
	}
	if err := sess.Persona().Edit(); err != nil {
		respondStepError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]wizard.Phase{"phase": sess.Persona().Phase()})
}

// --- Lean Canvas step ---

func (h *WizardHandler) LeanCanvasGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, middleware.UserID(r))
	if !ok {
		return
	}
	ctrl := sess.LeanCanvas()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"phase":   ctrl.Phase(),
		"canvas":  ctrl.Canvas(),
		"sources": ctrl.SectionSources(),
	})
}

func (h *WizardHandler) LeanCanvasGenerate(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	userID := middleware.UserID(r)
	var req struct {
		Section string `json:"section"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	sess, ok := h.session(w, userID)
	if !ok {
		return
	}
	if !h.checkAIBudget(w, userID) {
		return
	}

	result, err := sess.LeanCanvas().GenerateSection(r.Context(), req.Section)
	if err != nil {
		respondStepError(w, err)
		return
	}
	h.recordUsage(userID)
	respondJSON(w, http.StatusOK, result)
}

func (h *WizardHandler) LeanCanvasDraft(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req struct {
		Section string `json:"section"`
		Content string `json:"content"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	sess, ok := h.session(w, middleware.UserID(r))
	if !ok {
		return
	}
	if err := sess.LeanCanvas().UpdateSection(req.Section, req.Content); err != nil {
		respondStepError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess.LeanCanvas().Canvas())
}

func (h *WizardHandler) LeanCanvasSave(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	userID := middleware.UserID(r)
	sess, ok := h.session(w, userID)
	if !ok {
		return
	}
	concept, err := sess.LeanCanvas().Save()
	if err != nil {
		respondStepError(w, err)
		return
	}
	h.notifyCommit(userID, concept)
	respondJSON(w, http.StatusOK, concept)
}

func (h *WizardHandler) LeanCanvasEdit(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	sess, ok := h.session(w, middleware.UserID(r))
	if !ok {
		return
	}
	if err := sess.LeanCanvas().Edit(); err != nil {
		respondStepError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]wizard.Phase{"phase": sess.LeanCanvas().Phase()})
}

// --- Pitch Deck step ---

func (h *WizardHandler) PitchDeckGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, middleware.UserID(r))
	if !ok {
		return
	}
	ctrl := sess.PitchDeck()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"phase":      ctrl.Phase(),
		"slides":     ctrl.Slides(),
		"slideTypes": ctrl.SelectedTypes(),
	})
}

func (h *WizardHandler) PitchDeckTypes(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req struct {
		SlideTypes []model.SlideType `json:"slideTypes"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	sess, ok := h.session(w, middleware.UserID(r))
	if !ok {
		return
	}
	if err := sess.PitchDeck().SetSlideTypes(req.SlideTypes); err != nil {
		respondStepError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"slideTypes": sess.PitchDeck().SelectedTypes()})
}

func (h *WizardHandler) PitchDeckGenerate(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	userID := middleware.UserID(r)
	sess, ok := h.session(w, userID)
	if !ok {
		return
	}
	if !h.checkAIBudget(w, userID) {
		return
	}

	slides, err := sess.PitchDeck().Generate(r.Context())
	if err != nil {
		respondStepError(w, err)
		return
	}
	h.recordUsage(userID)
	respondJSON(w, http.StatusOK, map[string]interface{}{"phase": sess.PitchDeck().Phase(), "slides": slides})
}

func (h *WizardHandler) PitchDeckSlideEdit(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req struct {
		Index   int    `json:"index"`
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	sess, ok := h.session(w, middleware.UserID(r))
	if !ok {
		return
	}
	if err := sess.PitchDeck().EditSlide(req.Index, req.Title, req.Content); err != nil {
		respondStepError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess.PitchDeck().Slides())
}

func (h *WizardHandler) PitchDeckSlideAdd(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req struct {
		SlideType model.SlideType `json:"slideType"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	sess, ok := h.session(w, middleware.UserID(r))
	if !ok {
		return
	}
	if err := sess.PitchDeck().AddSlide(req.SlideType); err != nil {
		respondStepError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess.PitchDeck().Slides())
}

func (h *WizardHandler) PitchDeckSlideRemove(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req struct {
		Index int `json:"index"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	sess, ok := h.session(w, middleware.UserID(r))
	if !ok {
		return
	}
	if err := sess.PitchDeck().RemoveSlide(req.Index); err != nil {
		respondStepError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess.PitchDeck().Slides())
}

func (h *WizardHandler) PitchDeckSlideMove(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	sess, ok := h.session(w, middleware.UserID(r))
	if !ok {
		return
	}
	if err := sess.PitchDeck().MoveSlide(req.From, req.To); err != nil {
		respondStepError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess.PitchDeck().Slides())
}

func (h *WizardHandler) PitchDeckSave(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	userID := middleware.UserID(r)
	sess, ok := h.session(w, userID)
	if !ok {
		return
	}
	concept, err := sess.PitchDeck().Save()
	if err != nil {
		respondStepError(w, err)
		return
	}
	h.notifyCommit(userID, concept)
	respondJSON(w, http.StatusOK, concept)
}

func (h *WizardHandler) PitchDeckEdit(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	sess, ok := h.session(w, middleware.UserID(r))
	if !ok {
		return
	}
	if err := sess.PitchDeck().Edit(); err != nil {
		respondStepError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]wizard.Phase{"phase": sess.PitchDeck().Phase()})
}

// --- Pricing and export ---

func (h *WizardHandler) GetPricing(w http.ResponseWriter, r *http.Request) {
	plans := []subscription.Plan{
		subscription.Plans[auth.TierFree],
		subscription.Plans[auth.TierPro],
		subscription.Plans[auth.TierBusiness],
	}
	respondJSON(w, http.StatusOK, plans)
}

func (h *WizardHandler) UpgradeTier(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req struct {
		Tier auth.Tier `json:"tier"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := h.Auth.UpgradeTier(middleware.UserID(r), req.Tier)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *WizardHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	tier := h.tier(userID)
	used, err := h.Subs.MonthlyAIUsage(userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tier":           tier,
		"monthlyAIUsage": used,
		"limits":         subscription.GetLimits(tier),
	})
}

func (h *WizardHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	tier := h.tier(userID)
	if !subscription.CanExportJSON(tier) {
		respondError(w, http.StatusForbidden, subscription.UpgradeMessage(tier, "JSON export"))
		return
	}

	concept, err := h.Concepts.Concept(userID)
	if err != nil {
		respondStepError(w, err)
		return
	}
	if concept == nil {
		respondError(w, http.StatusNotFound, "No active business concept")
		return
	}
	personas, err := h.Concepts.Personas(userID)
	if err != nil {
		respondStepError(w, err)
		return
	}

	data, err := export.JSON(concept, personas)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="concept.json"`)
	w.Write(data)
}

// ExportDeck renders the pitch deck as markdown. Rendered document export is
// a paid feature, matching the PDF gate.
func (h *WizardHandler) ExportDeck(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	tier := h.tier(userID)
	if !subscription.CanExportPDF(tier) {
		respondError(w, http.StatusForbidden, subscription.UpgradeMessage(tier, "pitch deck export"))
		return
	}

	concept, err := h.Concepts.Concept(userID)
	if err != nil {
		respondStepError(w, err)
		return
	}
	if concept == nil {
		respondError(w, http.StatusNotFound, "No active business concept")
		return
	}

	w.Header().Set("Content-Type", "text/markdown")
	w.Header().Set("Content-Disposition", `attachment; filename="pitch-deck.md"`)
	w.Write([]byte(export.DeckMarkdown(concept)))
}
