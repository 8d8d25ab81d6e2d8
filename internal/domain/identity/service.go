package identity

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/healthchain/portal/internal/platform/apperr"
	"github.com/healthchain/portal/internal/platform/auth"
	"github.com/healthchain/portal/internal/platform/kv"
)

type Service struct {
	repo   UserRepository
	tokens *auth.TokenIssuer
	cost   int
	now    func() time.Time
}

// NewService creates the account service. A bcryptCost of zero selects
// bcrypt.DefaultCost.
func NewService(repo UserRepository, tokens *auth.TokenIssuer, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, tokens: tokens, cost: bcryptCost, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (*User, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || in.Password == "" || name == "" || strings.TrimSpace(in.Role) == "" {
		return nil, apperr.Validation("missing required fields: email, password, name, role")
	}
	role, err := auth.ParseRole(in.Role)
	if err != nil {
		return nil, apperr.Validation("invalid role %q", in.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, apperr.Internal(err, "failed to create user")
	}

	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		Role:         role,
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		Address:      strings.TrimSpace(in.Address),
		FacilityName: strings.TrimSpace(in.Facility),
		CreatedAt:    s.now().UTC(),
		Status:       StatusActive,
	}

	created, err := s.repo.CreateCredential(ctx, email, &Credential{UserID: u.ID, PasswordHash: string(hash)})
	if err != nil {
		return nil, apperr.Internal(err, "failed to create user")
	}
	if !created {
		return nil, apperr.Conflict("email already registered")
	}

	if err := s.saveProfile(ctx, u); err != nil {
		if derr := s.repo.DeleteCredential(ctx, email); derr != nil {
			err = errors.Join(err, derr)
		}
		return nil, apperr.Internal(err, "failed to create user")
	}
	return u, nil
}

func (s *Service) saveProfile(ctx context.Context, u *User) error {
	if err := s.repo.SaveUser(ctx, u); err != nil {
		return err
	}
	if u.Role != auth.RoleBeneficiary {
		return nil
	}
	return s.repo.SaveCard(ctx, s.newCard(u))
}

func (s *Service) newCard(u *User) *ParticipantCard {
	facility := u.FacilityName
	if facility == "" {
		facility = DefaultPrimaryFacility
	}
	return &ParticipantCard{
		UserID:          u.ID,
		CardNumber:      fmt.Sprintf("0001%09d", rand.IntN(1_000_000_000)),
		NationalID:      fmt.Sprintf("3175%010d", rand.Int64N(10_000_000_000)),
		Tier:            "Kelas I",
		Status:          "Aktif",
		ValidUntil:      fmt.Sprintf("31 Desember %d", s.now().Year()),
		PrimaryFacility: facility,
	}
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	cred, err := s.repo.GetCredential(ctx, email)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, apperr.Authentication("invalid email or password")
	}
	if err != nil {
		return nil, apperr.Internal(err, "login failed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Wrap(apperr.KindAuthentication, err, "invalid email or password")
	}

	u, err := s.activeUser(ctx, cred.UserID)
	if err != nil {
		return nil, err
	}

	token, exp, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, apperr.Internal(err, "login failed")
	}
	return &Session{
		AccessToken: token,
		ExpiresAt:   exp,
		User: LoginUser{
			ID:      u.ID,
			Email:   u.Email,
			Role:    u.Role,
			Name:    u.Name,
			Profile: u,
		},
	}, nil
}

// Resolve returns the profile of an account.
func (s *Service) Resolve(ctx context.Context, userID string) (*User, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to load user")
	}
	return u, nil
}

// Card returns a beneficiary's participant card, or nil if the account has
// none.
func (s *Service) Card(ctx context.Context, userID string) (*ParticipantCard, error) {
	card, err := s.repo.GetCard(ctx, userID)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to load participant card")
	}
	return card, nil
}

// VerifyAccount rejects tokens whose account was removed or disabled.
func (s *Service) VerifyAccount(ctx context.Context, userID string) error {
	_, err := s.activeUser(ctx, userID)
	return err
}

func (s *Service) activeUser(ctx context.Context, userID string) (*User, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, apperr.Authentication("account not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to load user")
	}
	if !u.Active() {
		return nil, apperr.Authentication("account is disabled")
	}
	return u, nil
}
