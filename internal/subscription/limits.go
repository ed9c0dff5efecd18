// Package subscription holds the tier feature table and the monthly AI usage
// counter backed by the wizard state store.
package subscription

import (
	"fmt"
	"time"

	"conceptcraft/internal/auth"
	"conceptcraft/internal/concept/repository"
)

// Unlimited marks a limit with no cap.
const Unlimited = -1

type Limits struct {
	MaxBusinessConcepts      int  `json:"maxBusinessConcepts"`
	MaxPersonasPerConcept    int  `json:"maxPersonasPerConcept"`
	MaxAIGenerationsPerMonth int  `json:"maxAIGenerationsPerMonth"`
	CanExportPDF             bool `json:"canExportPDF"`
	CanExportJSON            bool `json:"canExportJSON"`
	HasTeamCollaboration     bool `json:"hasTeamCollaboration"`
	HasAdvancedAI            bool `json:"hasAdvancedAI"`
	HasPrioritySupport       bool `json:"hasPrioritySupport"`
}

type Plan struct {
	Name     string    `json:"name"`
	Price    int       `json:"price"`
	Popular  bool      `json:"popular,omitempty"`
	Limits   Limits    `json:"limits"`
	Features []string  `json:"features"`
	Tier     auth.Tier `json:"tier"`
}

var Plans = map[auth.Tier]Plan{
	auth.TierFree: {
		Name:  "Free",
		Price: 0,
		Tier:  auth.TierFree,
		Limits: Limits{
			MaxBusinessConcepts:      1,
			MaxPersonasPerConcept:    1,
			MaxAIGenerationsPerMonth: 10,
			CanExportJSON:            true,
		},
		Features: []string{
			"1 Business Concept",
			"1 Persona per concept",
			"10 AI generations per month",
			"Basic Lean Canvas",
			"JSON export",
			"Community support",
		},
	},
	auth.TierPro: {
		Name:    "Professional",
		Price:   49,
		Popular: true,
		Tier:    auth.TierPro,
		Limits: Limits{
			MaxBusinessConcepts:      10,
			MaxPersonasPerConcept:    5,
			MaxAIGenerationsPerMonth: 500,
			CanExportPDF:             true,
			CanExportJSON:            true,
			HasAdvancedAI:            true,
		},
		Features: []string{
			"10 Business Concepts",
			"5 Personas per concept",
			"500 AI generations per month",
			"Advanced AI features",
			"PDF & JSON export",
			"Pitch deck generator",
			"Email support",
		},
	},
	auth.TierBusiness: {
		Name:  "Business",
		Price: 99,
		Tier:  auth.TierBusiness,
		Limits: Limits{
			MaxBusinessConcepts:      Unlimited,
			MaxPersonasPerConcept:    Unlimited,
			MaxAIGenerationsPerMonth: Unlimited,
			CanExportPDF:             true,
			CanExportJSON:            true,
			HasTeamCollaboration:     true,
			HasAdvancedAI:            true,
			HasPrioritySupport:       true,
		},
		Features: []string{
			"Unlimited Business Concepts",
			"Unlimited Personas",
			"Unlimited AI generations",
			"Team collaboration",
			"Advanced AI features",
			"All export formats",
			"Priority support",
			"Custom integrations",
		},
	},
}

func GetLimits(tier auth.Tier) Limits {
	return Plans[tier].Limits
}

// UsageStore is the counter slice of the state store.
type UsageStore interface {
	IncrementCounter(key string) (int, error)
	GetCounter(key string) (int, error)
}

// Service answers tier questions and tracks monthly AI usage per user in the
// state store.
type Service struct {
	Repo UsageStore
	// now is swappable in tests.
	now func() time.Time
}

func NewService(repo UsageStore) *Service {
	return &Service{Repo: repo, now: time.Now}
}

func (s *Service) month() string {
	return s.now().UTC().Format("2006-01")
}

// MonthlyAIUsage returns how many generations the user has spent this month.
func (s *Service) MonthlyAIUsage(userID string) (int, error) {
	return s.Repo.GetCounter(repository.UsageKey(userID, s.month()))
}

// CanUseAI reports whether the tier's monthly generation budget still has
// room.
func (s *Service) CanUseAI(userID string, tier auth.Tier) (bool, error) {
	limits := GetLimits(tier)
	if limits.MaxAIGenerationsPerMonth == Unlimited {
		return true, nil
	}
	used, err := s.MonthlyAIUsage(userID)
	if err != nil {
		return false, err
	}
	return used < limits.MaxAIGenerationsPerMonth, nil
}

// RecordAIUsage counts one generation against the user's monthly budget.
func (s *Service) RecordAIUsage(userID string) error {
	_, err := s.Repo.IncrementCounter(repository.UsageKey(userID, s.month()))
	return err
}

func CanExportJSON(tier auth.Tier) bool { return GetLimits(tier).CanExportJSON }
func CanExportPDF(tier auth.Tier) bool  { return GetLimits(tier).CanExportPDF }

// UpgradeMessage names the next tier that unlocks a feature.
func UpgradeMessage(tier auth.Tier, feature string) string {
	next := auth.TierPro
	if tier != auth.TierFree {
		next = auth.TierBusiness
	}
	plan := Plans[next]
	return fmt.Sprintf("Upgrade to %s ($%d/month) to unlock %s and more features.", plan.Name, plan.Price, feature)
}
