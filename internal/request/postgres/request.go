package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/request-management/internal"
	"github.com/frahmantamala/request-management/internal/request"
)

// RequestRepository implements the request.Repository interface using GORM
type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) request.Repository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) Create(req *request.Request) error {
	if err := r.db.Create(req).Error; err != nil {
		return internal.NewInternalError("failed to create request", err)
	}
	return nil
}

func (r *RequestRepository) GetByID(id string) (*request.Request, error) {
	var req request.Request
	err := r.db.Where("id = ?", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrRequestNotFound
		}
		return nil, internal.NewInternalError("failed to load request", err)
	}
	return &req, nil
}

// ListForParticipant returns requests the email filed or must decide,
// newest first.
func (r *RequestRepository) ListForParticipant(email string) ([]*request.Request, error) {
	var requests []*request.Request
	err := r.db.
		Where("requestor_email = ? OR superior_email = ?", email, email).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, internal.NewInternalError("failed to list requests", err)
	}
	return requests, nil
}

// DecideStatus flips the status with one conditional UPDATE keyed on the
// expected current status. The affected-row count tells the caller
// whether this decision actually won: a read-then-write pair here would
// let two concurrent superiors both see pending.
func (r *RequestRepository) DecideStatus(id, fromStatus, toStatus string) (int64, error) {
	result := r.db.Model(&request.Request{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(map[string]interface{}{
			"status":     toStatus,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, internal.NewInternalError("failed to update request status", result.Error)
	}
	return result.RowsAffected, nil
}
