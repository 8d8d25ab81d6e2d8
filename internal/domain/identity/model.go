package identity

import (
	"time"

	"github.com/healthchain/portal/internal/platform/auth"
)

// Account statuses.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// DefaultPrimaryFacility is assigned to beneficiaries who sign up without
// naming a facility.
const DefaultPrimaryFacility = "RS. Cipto Mangunkusumo"

// User is the profile stored at user:<id>.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         auth.Role `json:"role"`
	PhoneNumber  string    `json:"phoneNumber,omitempty"`
	Address      string    `json:"address,omitempty"`
	FacilityName string    `json:"facilityName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	Status       string    `json:"status"`
}

func (u *User) Active() bool { return u.Status == StatusActive }

// Summary is the public part of a user returned by signup.
type Summary struct {
	ID    string    `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  auth.Role `json:"role"`
}

func (u *User) Summary() Summary {
	return Summary{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// Credential is stored at cred:<email>. The hash never leaves this package.
type Credential struct {
	UserID       string `json:"userId"`
	PasswordHash string `json:"passwordHash"`
}

// ParticipantCard is a beneficiary's insurance membership card.
type ParticipantCard struct {
	UserID          string `json:"userId"`
	CardNumber      string `json:"cardNumber"`
	NationalID      string `json:"nationalId"`
	Tier            string `json:"tier"`
	Status          string `json:"status"`
	ValidUntil      string `json:"validUntil"`
	PrimaryFacility string `json:"primaryFacility"`
}

type SignupInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	Facility    string `json:"facility"`
}

// LoginUser is the user block of a login response.
type LoginUser struct {
	ID      string    `json:"id"`
	Email   string    `json:"email"`
	Role    auth.Role `json:"role"`
	Name    string    `json:"name"`
	Profile *User     `json:"profile"`
}

// Session is the result of a successful login.
type Session struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        LoginUser `json:"user"`
}
