// Package auth is the account collaborator: simulated-latency login and
// signup, JWT issuance for the HTTP layer, and the subscription tier carried
// on each user record.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Tier string

const (
	TierFree     Tier = "free"
	TierPro      Tier = "pro"
	TierBusiness Tier = "business"
)

func (t Tier) Valid() bool {
	return t == TierFree || t == TierPro || t == TierBusiness
}

type User struct {
	UserID           string    `json:"userId"`
	Email            string    `json:"email"`
	SubscriptionTier Tier      `json:"subscriptionTier"`
	CreatedAt        time.Time `json:"createdAt"`
}

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrUnknownUser        = errors.New("unknown user")
)

// Service keeps an in-memory account registry and signs JWTs the auth
// middleware validates. Account calls simulate upstream latency so the flow
// matches a real identity provider's timing.
type Service struct {
	secret   []byte
	latency  time.Duration
	tokenTTL time.Duration

	lock    sync.Mutex
	byEmail map[string]*User
	byID    map[string]*User
}

func NewService(secret string, latency time.Duration) *Service {
	return &Service{
		secret:   []byte(secret),
		latency:  latency,
		tokenTTL: 24 * time.Hour,
		byEmail:  make(map[string]*User),
		byID:     make(map[string]*User),
	}
}

// wait blocks for the simulated provider latency, honoring cancellation.
func (s *Service) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return nil
	}
	select {
	case <-time.After(s.latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Signup registers a new free-tier account and returns it with a signed
// token.
func (s *Service) Signup(ctx context.Context, email, password string) (*User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, "", ErrMissingCredentials
	}
	if err := s.wait(ctx); err != nil {
		return nil, "", err
	}

	s.lock.Lock()
	user, ok := s.byEmail[email]
	if !ok {
		user = &User{
			UserID:           uuid.NewString(),
			Email:            email,
			SubscriptionTier: TierFree,
			CreatedAt:        time.Now().UTC(),
		}
		s.byEmail[email] = user
		s.byID[user.UserID] = user
	}
	s.lock.Unlock()

	token, err := s.issueToken(user.UserID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login resolves an account for the credentials, creating a free-tier one if
// none exists yet. Password verification is the external provider's concern;
// here it only has to be present.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	return s.Signup(ctx, email, password)
}

func (s *Service) UserByID(userID string) (*User, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	user, ok := s.byID[userID]
	return user, ok
}

// UpgradeTier changes a user's subscription tier (the pricing page's only
// mutation).
func (s *Service) UpgradeTier(userID string, tier Tier) (*User, error) {
	if !tier.Valid() {
		return nil, errors.New("unknown subscription tier: " + string(tier))
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	user, ok := s.byID[userID]
	if !ok {
		return nil, ErrUnknownUser
	}
	user.SubscriptionTier = tier
	return user, nil
}

func (s *Service) issueToken(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	})
	return token.SignedString(s.secret)
}
