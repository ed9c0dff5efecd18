package ai

import "conceptcraft/internal/concept/model"

// Fixed content substituted when a generation call fails. Deterministic and
// identical across failures; results carry SourceFallback so callers can tell
// them apart from genuine model output.

var fallbackProblemSolution = ProblemSolutionResult{
	ProblemStatement:  "Small business owners struggle to efficiently manage their social media presence across multiple platforms, leading to inconsistent brand messaging and missed engagement opportunities.",
	SolutionStatement: "Our AI-powered social media management platform automates content creation, scheduling, and engagement tracking across all major social platforms, helping small businesses maintain a consistent and effective online presence without the time investment.",
	Source:            SourceFallback,
}

var fallbackPersona = PersonaResult{
	Persona: model.Persona{
		Name:         "Sarah the Small Business Owner",
		Demographics: "35-45 years old, owns a local retail or service business, manages 2-10 employees, tech-comfortable but time-constrained",
		PainPoints: []string{
			"Limited time to manage social media consistently",
			"Difficulty creating engaging content regularly",
			"Struggling to track which posts perform best",
			"Managing multiple social media accounts manually",
		},
		Motivations: []string{
			"Grow customer base and increase sales",
			"Build strong brand recognition in local market",
			"Compete effectively with larger businesses",
			"Maximize return on marketing investment",
		},
		Behaviors: []string{
			"Uses smartphone for most business tasks",
			"Active on Facebook and Instagram personally",
			"Seeks time-saving business solutions",
			"Values tools that show clear ROI",
		},
		Description: "Sarah is a dedicated small business owner who wears many hats in her company. She understands the importance of social media marketing but struggles to find the time to do it effectively while managing other aspects of her business.",
	},
	Source: SourceFallback,
}

var fallbackCanvasSections = map[string]string{
	"keyMetrics":             "Monthly recurring revenue, customer acquisition cost, user engagement rate, churn rate",
	"uniqueValueProposition": "AI-powered social media automation that saves 10+ hours per week while increasing engagement by 40%",
	"unfairAdvantage":        "Proprietary AI algorithm trained specifically on small business social media patterns and local market dynamics",
	"channels":               "Direct sales, content marketing, social media advertising, partner referrals, local business networks",
	"costStructure":          "AI infrastructure costs, customer support, marketing and sales, platform development, content creation tools",
	"revenueStreams":         "Monthly subscription fees ($49-199/month based on features), setup fees, premium content packages",
}

var fallbackSlides = []model.PitchDeckSlide{
	{
		Title:     "The Problem",
		Content:   "Small business owners are overwhelmed trying to maintain effective social media presence:\n\n• 73% of small businesses struggle with consistent social media posting\n• Average business owner spends 15+ hours/week on social media tasks\n• 60% report difficulty measuring social media ROI\n• Inconsistent brand messaging hurts customer trust",
		SlideType: model.SlideProblem,
	},
	{
		Title:     "Our Solution",
		Content:   "AI-powered social media management platform designed specifically for small businesses:\n\n• Automated content creation using business-specific AI\n• Smart scheduling across all major platforms\n• Real-time engagement tracking and analytics\n• Brand-consistent messaging with local market optimization",
		SlideType: model.SlideSolution,
	},
	{
		Title:     "Market Opportunity",
		Content:   "Massive and growing market opportunity:\n\n• $15.6B social media management software market\n• 31.7M small businesses in the US alone\n• 91% of businesses use social media for marketing\n• Market growing at 23.6% CAGR through 2027",
		SlideType: model.SlideMarket,
	},
	{
		Title:     "Business Model",
		Content:   "Recurring revenue model with multiple tiers:\n\n• Starter Plan: $49/month (basic automation)\n• Professional: $99/month (advanced AI features)\n• Enterprise: $199/month (team collaboration)\n• Average customer LTV: $2,400\n• Target: 10,000 customers by year 2",
		SlideType: model.SlideBusinessModel,
	},
}

// fallbackSlide returns the fixed slide for a type. Team and financial slides
// have no fixed content; a failed generation for those types drops the slide.
func fallbackSlide(slideType model.SlideType) (model.PitchDeckSlide, bool) {
	for _, s := range fallbackSlides {
		if s.SlideType == slideType {
			return s, true
		}
	}
	return model.PitchDeckSlide{}, false
}
