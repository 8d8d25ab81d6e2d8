package identity

import (
	"context"
	"fmt"

	"github.com/healthchain/portal/internal/platform/kv"
)

type userRepoKV struct {
	store kv.Store
}

func NewUserRepoKV(store kv.Store) UserRepository {
	return &userRepoKV{store: store}
}

func credKey(email string) string { return kv.Key("cred", email) }
func userKey(id string) string    { return kv.Key("user", id) }
func cardKey(id string) string    { return kv.Key("peserta", id) }

func (r *userRepoKV) CreateCredential(ctx context.Context, email string, cred *Credential) (bool, error) {
	ok, err := r.store.SetNX(ctx, credKey(email), cred)
	if err != nil {
		return false, fmt.Errorf("create credential: %w", err)
	}
	return ok, nil
}

func (r *userRepoKV) GetCredential(ctx context.Context, email string) (*Credential, error) {
	var cred Credential
	if err := r.store.Get(ctx, credKey(email), &cred); err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}
	return &cred, nil
}

func (r *userRepoKV) DeleteCredential(ctx context.Context, email string) error {
	if err := r.store.Delete(ctx, credKey(email)); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

func (r *userRepoKV) SaveUser(ctx context.Context, u *User) error {
	if err := r.store.Set(ctx, userKey(u.ID), u); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (r *userRepoKV) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	if err := r.store.Get(ctx, userKey(id), &u); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *userRepoKV) SaveCard(ctx context.Context, card *ParticipantCard) error {
	if err := r.store.Set(ctx, cardKey(card.UserID), card); err != nil {
		return fmt.Errorf("save participant card: %w", err)
	}
	return nil
}

func (r *userRepoKV) GetCard(ctx context.Context, userID string) (*ParticipantCard, error) {
	var card ParticipantCard
	if err := r.store.Get(ctx, cardKey(userID), &card); err != nil {
		return nil, fmt.Errorf("get participant card: %w", err)
	}
	return &card, nil
}
