package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frahmantamala/request-management/internal"
	"github.com/frahmantamala/request-management/internal/auth"
)

// IdentityRepository implements the credential store on GORM.
type IdentityRepository struct {
	db *gorm.DB
}

func NewIdentityRepository(db *gorm.DB) auth.IdentityRepository {
	return &IdentityRepository{db: db}
}

// Upsert inserts the identity or, when the email already exists, rotates
// the stored name and refresh grant in place. Email is the conflict key.
func (r *IdentityRepository) Upsert(identity *auth.Identity) error {
	now := time.Now()
	identity.CreatedAt = now
	identity.UpdatedAt = now

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"subject", "name", "refresh_token", "updated_at",
		}),
	}).Create(identity).Error
	if err != nil {
		return internal.NewInternalError("failed to upsert identity", err)
	}

	// Create leaves a zero ID on conflict; re-read so callers always get
	// the persisted row.
	if identity.ID == 0 {
		var stored auth.Identity
		if err := r.db.Where("email = ?", identity.Email).First(&stored).Error; err == nil {
			identity.ID = stored.ID
			identity.CreatedAt = stored.CreatedAt
		}
	}

	return nil
}

func (r *IdentityRepository) GetByEmail(email string) (*auth.Identity, error) {
	var identity auth.Identity
	err := r.db.Where("email = ?", email).First(&identity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrIdentityNotFound
		}
		return nil, internal.NewInternalError("failed to load identity", err)
	}
	return &identity, nil
}
