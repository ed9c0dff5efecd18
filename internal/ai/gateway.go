package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"conceptcraft/internal/concept/model"
	"conceptcraft/pkg/logger"
)

// Source records whether a result came from the model or from the fixed
// fallback table, so callers (and ultimately users) can tell degraded output
// apart from genuine generations.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Per-kind output budgets.
const (
	maxTokensProblemSolution = 1000
	maxTokensPersona         = 1500
	maxTokensCanvasSection   = 1000
	maxTokensSlide           = 800
)

type ProblemSolutionInput struct {
	TargetAudience     string `json:"targetAudience"`
	ProblemDescription string `json:"problemDescription"`
	SolutionIdea       string `json:"solutionIdea"`
	UniqueValue        string `json:"uniqueValue"`
}

type ProblemSolutionResult struct {
	ProblemStatement  string `json:"problemStatement"`
	SolutionStatement string `json:"solutionStatement"`
	Source            Source `json:"source"`
}

type PersonaInput struct {
	ProblemStatement  string `json:"problemStatement"`
	SolutionStatement string `json:"solutionStatement"`
	Industry          string `json:"industry"`
	Demographics      string `json:"demographics"`
	Behaviors         string `json:"behaviors"`
	Challenges        string `json:"challenges"`
}

type PersonaResult struct {
	model.Persona
	Source Source `json:"source"`
}

type LeanCanvasInput struct {
	ProblemStatement  string `json:"problemStatement"`
	SolutionStatement string `json:"solutionStatement"`
	TargetPersona     string `json:"targetPersona"`
	Section           string `json:"section"`
}

type CanvasSectionResult struct {
	Section string `json:"section"`
	Content string `json:"content"`
	Source  Source `json:"source"`
}

type PitchDeckInput struct {
	ProblemStatement  string                `json:"problemStatement"`
	SolutionStatement string                `json:"solutionStatement"`
	TargetPersona     string                `json:"targetPersona"`
	LeanCanvas        *model.LeanCanvasData `json:"leanCanvas"`
	SlideTypes        []model.SlideType     `json:"slideTypes"`
}

type SlideResult struct {
	model.PitchDeckSlide
	Source Source `json:"source"`
}

// completer is the outbound side of the gateway; *Client satisfies it.
type completer interface {
	Chat(ctx context.Context, messages []Message, maxTokens int) (string, error)
}

// Gateway builds a natural-language instruction per generation kind, sends a
// single request per generation, and parses the response into a typed result.
// A failed call or an unparseable response never surfaces as an error: the
// kind's fixed fallback content is returned instead, tagged SourceFallback.
// The gateway does not validate upstream fields; callers do that first.
type Gateway struct {
	llm completer
}

func NewGateway(client *Client) *Gateway {
	return &Gateway{llm: client}
}

// canvasSectionQuestions covers the six AI-generatable canvas boxes. The
// remaining three (problem, solution, customerSegments) are filled from
// already-committed statements, not generated.
var canvasSectionQuestions = map[string]string{
	"keyMetrics":             "What are the key metrics this business should track to measure success?",
	"uniqueValueProposition": "What is the unique value proposition that differentiates this solution?",
	"unfairAdvantage":        "What unfair advantage could this business have that competitors can't easily copy?",
	"channels":               "What are the best channels to reach the target customers?",
	"costStructure":          "What are the main cost drivers for this business model?",
	"revenueStreams":         "What are the potential revenue streams for this business?"}

// GeneratableCanvasSections reports whether a canvas section supports AI
// suggestions.
func GeneratableCanvasSection(section string) bool {
	_, ok := canvasSectionQuestions[section]
	return ok
}

var slideInstructions = map[model.SlideType]string{
	model.SlideProblem:       "Create content for a 'Problem' slide that clearly defines the problem your target customers face.",
	model.SlideSolution:      "Create content for a 'Solution' slide that presents your solution and key features.",
	model.SlideMarket:        "Create content for a 'Market Opportunity' slide showing market size and opportunity.",
	model.SlideBusinessModel: "Create content for a 'Business Model' slide explaining how you make money.",
	model.SlideTeam:          "Create content for a 'Team' slide template that founders can customize with their team information.",
	model.SlideFinancial:     "Create content for a 'Financial Projections' slide with realistic projections framework.",
}

func (g *Gateway) GenerateProblemSolution(ctx context.Context, input ProblemSolutionInput) ProblemSolutionResult {
	prompt := fmt.Sprintf(`Based on the following information, generate a clear and compelling problem statement and solution statement for a business idea:

Target Audience: %s
Problem Description: %s
Solution Idea: %s
Unique Value: %s

Please provide:
1. A concise problem statement (2-3 sentences) that clearly articulates the pain point
2. A clear solution statement (2-3 sentences) that explains how the solution addresses the problem

Format your response as JSON:
{
  "problemStatement": "...",
  "solutionStatement": "..."
}`, input.TargetAudience, input.ProblemDescription, input.SolutionIdea, input.UniqueValue)

	response, err := g.llm.Chat(ctx, []Message{
		{Role: "system", Content: "You are an expert business strategist helping founders clarify their business concepts. Provide clear, actionable insights."},
		{Role: "user", Content: prompt},
	}, maxTokensProblemSolution)
	if err != nil {
		logger.Sugar.Warnf("Problem/solution generation failed, using fallback: %v", err)
		return fallbackProblemSolution
	}

	var result ProblemSolutionResult
	if err := json.Unmarshal([]byte(response), &result); err != nil {
		logger.Sugar.Warnf("Problem/solution response is not valid JSON, using fallback: %v", err)
		return fallbackProblemSolution
	}
	result.Source = SourceModel
	return result
}

func (g *Gateway) GeneratePersona(ctx context.Context, input PersonaInput) PersonaResult {
	prompt := fmt.Sprintf(`Based on the following business concept, create a detailed customer persona:

Problem Statement: %s
Solution Statement: %s
Industry: %s
Demographics: %s
Behaviors: %s
Challenges: %s

Please provide a comprehensive customer persona including:
1. A name for the persona
2. Detailed demographics
3. 3-5 specific pain points (as an array)
4. 3-5 motivations (as an array)
5. 3-5 behaviors (as an array)
6. A narrative description

Format your response as JSON:
{
  "name": "...",
  "demographics": "...",
  "painPoints": ["..."],
  "motivations": ["..."],
  "behaviors": ["..."],
  "description": "..."
}`, input.ProblemStatement, input.SolutionStatement, input.Industry, input.Demographics, input.Behaviors, input.Challenges)

	response, err := g.llm.Chat(ctx, []Message{
		{Role: "system", Content: "You are an expert in customer research and persona development. Create realistic, actionable customer personas."},
		{Role: "user", Content: prompt},
	}, maxTokensPersona)
	if err != nil {
		logger.Sugar.Warnf("Persona generation failed, using fallback: %v", err)
		return fallbackPersona
	}

	var result PersonaResult
	if err := json.Unmarshal([]byte(response), &result); err != nil {
		logger.Sugar.Warnf("Persona response is not valid JSON, using fallback: %v", err)
		return fallbackPersona
	}
	result.Source = SourceModel
	return result
}

// GenerateLeanCanvasSection produces one canvas box as raw prose rather than
// JSON. Unknown sections go straight to the fallback table.
func (g *Gateway) GenerateLeanCanvasSection(ctx context.Context, input LeanCanvasInput) CanvasSectionResult {
	question, ok := canvasSectionQuestions[input.Section]
	if !ok {
		return CanvasSectionResult{Section: input.Section, Source: SourceFallback}
	}

	prompt := fmt.Sprintf(`Based on this business concept, provide a suggestion for the %s section of a Lean Canvas:

Problem Statement: %s
Solution Statement: %s
Target Persona: %s

Question: %s

Provide a concise, actionable response (2-3 sentences) that would fit in a Lean Canvas box.`,
		input.Section, input.ProblemStatement, input.SolutionStatement, input.TargetPersona, question)

	response, err := g.llm.Chat(ctx, []Message{
		{Role: "system", Content: "You are a business model expert specializing in Lean Canvas methodology. Provide practical, actionable insights."},
		{Role: "user", Content: prompt},
	}, maxTokensCanvasSection)
	if err != nil {
		logger.Sugar.Warnf("Lean canvas %s generation failed, using fallback: %v", input.Section, err)
		return CanvasSectionResult{Section: input.Section, Content: fallbackCanvasSections[input.Section], Source: SourceFallback}
	}

	return CanvasSectionResult{Section: input.Section, Content: strings.TrimSpace(response), Source: SourceModel}
}

// GeneratePitchDeckSlides issues one independent call per selected slide type.
// A failure on one type falls back only for that slide; the others keep their
// model-generated content.
func (g *Gateway) GeneratePitchDeckSlides(ctx context.Context, input PitchDeckInput) []SlideResult {
	slides := make([]SlideResult, 0, len(input.SlideTypes))

	for _, slideType := range input.SlideTypes {
		slide, ok := g.generateSlide(ctx, input, slideType)
		if !ok {
			continue
		}
		slides = append(slides, slide)
	}

	return slides
}

func (g *Gateway) generateSlide(ctx context.Context, input PitchDeckInput, slideType model.SlideType) (SlideResult, bool) {
	var canvasContext string
	if input.LeanCanvas != nil {
		canvasJSON, _ := json.Marshal(input.LeanCanvas)
		canvasContext = fmt.Sprintf("Lean Canvas Data: %s\n", canvasJSON)
	}

	prompt := fmt.Sprintf(`Based on this business concept, %s

Problem Statement: %s
Solution Statement: %s
Target Persona: %s
%s
Create compelling slide content that would work in an investor pitch deck. Include:
1. A compelling slide title
2. Bullet points or structured content (aim for 4-6 key points)
3. Make it investor-focused and compelling

Format as JSON:
{
  "title": "...",
  "content": "..."
}`, slideInstructions[slideType], input.ProblemStatement, input.SolutionStatement, input.TargetPersona, canvasContext)

	response, err := g.llm.Chat(ctx, []Message{
		{Role: "system", Content: "You are an expert pitch deck consultant who has helped hundreds of startups raise funding. Create compelling, investor-ready content."},
		{Role: "user", Content: prompt},
	}, maxTokensSlide)
	if err == nil {
		var slide model.PitchDeckSlide
		if err := json.Unmarshal([]byte(response), &slide); err == nil {
			slide.SlideType = slideType
			return SlideResult{PitchDeckSlide: slide, Source: SourceModel}, true
		}
		logger.Sugar.Warnf("Slide %s response is not valid JSON, using fallback", slideType)
	} else {
		logger.Sugar.Warnf("Slide %s generation failed, using fallback: %v", slideType, err)
	}

	fallback, ok := fallbackSlide(slideType)
	if !ok {
		return SlideResult{}, false
	}
	return SlideResult{PitchDeckSlide: fallback, Source: SourceFallback}, true
}
