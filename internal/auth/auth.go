package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is one row in the credential store: who the user is plus the
// long-lived refresh grant Google handed us on consent. The grant rotates
// on every login.
type Identity struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Subject      string    `json:"-" gorm:"column:subject"`
	Email        string    `json:"email" gorm:"column:email;uniqueIndex;not null"`
	Name         string    `json:"name" gorm:"column:name;not null"`
	RefreshToken string    `json:"-" gorm:"column:refresh_token"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Identity) TableName() string {
	return "identities"
}

// User is the read-only identity projection attached to the request
// context by the gate. Downstream packages join on Email only.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Claims is the full bearer token claim set. The token is self-contained:
// verifiers trust it without a store lookup, which bounds revocation lag
// to the token lifetime.
type Claims struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies bearer tokens. Every service that fronts a
// protected operation runs the same codec with the same secret.
type TokenCodec interface {
	Issue(identity *Identity, accessToken string) (string, error)
	Verify(tokenString string) (*Claims, error)
}

// IdentityRepository is the credential store contract. Pure storage, keyed
// by email.
type IdentityRepository interface {
	Upsert(identity *Identity) error
	GetByEmail(email string) (*Identity, error)
}

type ctxKey string

const ContextUserKey ctxKey = "authUser"

func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(ContextUserKey).(*User)
	return user, ok
}

func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, user)
}
