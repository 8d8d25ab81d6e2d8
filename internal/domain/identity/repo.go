package identity

import "context"

// UserRepository persists accounts. Lookups of missing records return an
// error wrapping kv.ErrNotFound.
type UserRepository interface {
	// CreateCredential stores cred under email unless the email is taken,
	// and reports whether it did.
	CreateCredential(ctx context.Context, email string, cred *Credential) (bool, error)
	GetCredential(ctx context.Context, email string) (*Credential, error)
	DeleteCredential(ctx context.Context, email string) error

	SaveUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id string) (*User, error)

	SaveCard(ctx context.Context, card *ParticipantCard) error
	GetCard(ctx context.Context, userID string) (*ParticipantCard, error)
}
