package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"conceptcraft/internal/concept/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completionServer answers every chat request by passing the user prompt to
// reply, which returns the completion content or an empty string to fail the
// request with a 500.
func completionServer(t *testing.T, reply func(prompt string) string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Messages)

		content := reply(req.Messages[len(req.Messages)-1].Content)
		if content == "" {
			http.Error(w, "model unavailable", http.StatusInternalServerError)
			return
		}
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func newTestGateway(t *testing.T, reply func(prompt string) string) *Gateway {
	server := completionServer(t, reply)
	t.Cleanup(server.Close)
	return NewGateway(NewClient(server.URL, "", ""))
}

func failingGateway(t *testing.T) *Gateway {
	return newTestGateway(t, func(string) string { return "" })
}

func TestGenerateProblemSolutionFromModel(t *testing.T) {
	gw := newTestGateway(t, func(prompt string) string {
		assert.Contains(t, prompt, "Target Audience: freelancers")
		return `{"problemStatement":"Invoices pile up.","solutionStatement":"We automate them."}`
	})

	result := gw.GenerateProblemSolution(context.Background(), ProblemSolutionInput{
		TargetAudience:     "freelancers",
		ProblemDescription: "manual invoicing",
		SolutionIdea:       "automated billing",
		UniqueValue:        "one click",
	})

	assert.Equal(t, SourceModel, result.Source)
	assert.Equal(t, "Invoices pile up.", result.ProblemStatement)
	assert.Equal(t, "We automate them.", result.SolutionStatement)
}

func TestAllKindsFallBackWhenServiceIsDown(t *testing.T) {
	gw := failingGateway(t)
	ctx := context.Background()

	ps := gw.GenerateProblemSolution(ctx, ProblemSolutionInput{TargetAudience: "x", ProblemDescription: "y", SolutionIdea: "z"})
	assert.Equal(t, SourceFallback, ps.Source)
	assert.Equal(t, fallbackProblemSolution.ProblemStatement, ps.ProblemStatement)

	persona := gw.GeneratePersona(ctx, PersonaInput{ProblemStatement: "p", SolutionStatement: "s"})
	assert.Equal(t, SourceFallback, persona.Source)
	assert.Equal(t, "Sarah the Small Business Owner", persona.Name)
	assert.Len(t, persona.PainPoints, 4)

	section := gw.GenerateLeanCanvasSection(ctx, LeanCanvasInput{Section: "keyMetrics"})
	assert.Equal(t, SourceFallback, section.Source)
	assert.Equal(t, fallbackCanvasSections["keyMetrics"], section.Content)

	slides := gw.GeneratePitchDeckSlides(ctx, PitchDeckInput{
		SlideTypes: []model.SlideType{model.SlideProblem, model.SlideSolution, model.SlideMarket, model.SlideBusinessModel},
	})
	require.Len(t, slides, 4)
	for i, slide := range slides {
		assert.Equal(t, SourceFallback, slide.Source)
		assert.Equal(t, fallbackSlides[i], slide.PitchDeckSlide)
	}
}

func TestFallbackOnMalformedResponse(t *testing.T) {
	gw := newTestGateway(t, func(string) string { return "Sure! Here is your JSON: {broken" })

	ps := gw.GenerateProblemSolution(context.Background(), ProblemSolutionInput{})
	assert.Equal(t, SourceFallback, ps.Source)
	assert.Equal(t, fallbackProblemSolution.ProblemStatement, ps.ProblemStatement)

	persona := gw.GeneratePersona(context.Background(), PersonaInput{})
	assert.Equal(t, SourceFallback, persona.Source)
	assert.Equal(t, fallbackPersona.Name, persona.Name)
}

func TestGeneratePersonaFromModel(t *testing.T) {
	gw := newTestGateway(t, func(prompt string) string {
		assert.Contains(t, prompt, "Industry: logistics")
		return `{"name":"Omar the Dispatcher","demographics":"30-40","painPoints":["lost trucks"],"motivations":["on-time delivery"],"behaviors":["lives in spreadsheets"],"description":"Runs a regional fleet."}`
	})

	result := gw.GeneratePersona(context.Background(), PersonaInput{Industry: "logistics"})
	assert.Equal(t, SourceModel, result.Source)
	assert.Equal(t, "Omar the Dispatcher", result.Name)
	assert.Equal(t, []string{"lost trucks"}, result.PainPoints)
}

func TestGenerateLeanCanvasSectionProse(t *testing.T) {
	gw := newTestGateway(t, func(prompt string) string {
		assert.Contains(t, prompt, "channels section")
		return "  Partner with trade associations and run local webinars.  \n"
	})

	result := gw.GenerateLeanCanvasSection(context.Background(), LeanCanvasInput{Section: "channels"})
	assert.Equal(t, SourceModel, result.Source)
	assert.Equal(t, "channels", result.Section)
	assert.Equal(t, "Partner with trade associations and run local webinars.", result.Content)
}

func TestGenerateLeanCanvasSectionUnknown(t *testing.T) {
	gw := newTestGateway(t, func(string) string {
		t.Fatal("unknown section must not reach the model")
		return ""
	})

	result := gw.GenerateLeanCanvasSection(context.Background(), LeanCanvasInput{Section: "problem"})
	assert.Equal(t, SourceFallback, result.Source)
	assert.Empty(t, result.Content)
}

func TestGeneratableCanvasSection(t *testing.T) {
	assert.True(t, GeneratableCanvasSection("keyMetrics"))
	assert.True(t, GeneratableCanvasSection("revenueStreams"))
	assert.False(t, GeneratableCanvasSection("problem"))
	assert.False(t, GeneratableCanvasSection("customerSegments"))
}

func TestPitchDeckSlidesFailIndependently(t *testing.T) {
	gw := newTestGateway(t, func(prompt string) string {
		if strings.Contains(prompt, "'Solution' slide") {
			return ""
		}
		return `{"title":"Why It Hurts","content":"Manual work everywhere."}`
	})

	slides := gw.GeneratePitchDeckSlides(context.Background(), PitchDeckInput{
		SlideTypes: []model.SlideType{model.SlideProblem, model.SlideSolution},
	})

	require.Len(t, slides, 2)
	assert.Equal(t, SourceModel, slides[0].Source)
	assert.Equal(t, "Why It Hurts", slides[0].Title)
	assert.Equal(t, model.SlideProblem, slides[0].SlideType)

	assert.Equal(t, SourceFallback, slides[1].Source)
	assert.Equal(t, "Our Solution", slides[1].Title)
	assert.Equal(t, model.SlideSolution, slides[1].SlideType)
}

func TestPitchDeckSlideWithoutFallbackIsDropped(t *testing.T) {
	gw := failingGateway(t)

	slides := gw.GeneratePitchDeckSlides(context.Background(), PitchDeckInput{
		SlideTypes: []model.SlideType{model.SlideProblem, model.SlideTeam, model.SlideFinancial},
	})

	require.Len(t, slides, 1)
	assert.Equal(t, model.SlideProblem, slides[0].SlideType)
}

func TestPitchDeckPromptIncludesCanvas(t *testing.T) {
	gw := newTestGateway(t, func(prompt string) string {
		assert.Contains(t, prompt, "Lean Canvas Data:")
		assert.Contains(t, prompt, "word of mouth")
		return `{"title":"T","content":"C"}`
	})

	canvas := &model.LeanCanvasData{Channels: "word of mouth"}
	slides := gw.GeneratePitchDeckSlides(context.Background(), PitchDeckInput{
		LeanCanvas: canvas,
		SlideTypes: []model.SlideType{model.SlideMarket},
	})
	require.Len(t, slides, 1)
	assert.Equal(t, SourceModel, slides[0].Source)
}
