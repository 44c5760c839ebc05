package postgres

import (
	"time"

	"github.com/frahmantamala/claim-management/internal"
	"github.com/frahmantamala/claim-management/internal/claim"
	claimDatamodel "github.com/frahmantamala/claim-management/internal/core/datamodel/claim"
	"gorm.io/gorm"
)

// ClaimRepository implements the claim.Repository interface using GORM.
type ClaimRepository struct {
	db *gorm.DB
}

func NewClaimRepository(db *gorm.DB) claim.Repository {
	return &ClaimRepository{db: db}
}

func (r *ClaimRepository) Create(c *claim.Claim) error {
	m := claim.ToDataModel(c)
	if err := r.db.Create(m).Error; err != nil {
		return err
	}
	c.ID = m.ID
	c.CreatedAt = m.CreatedAt
	c.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *ClaimRepository) GetByID(id int64) (*claim.Claim, error) {
	var m claimDatamodel.Claim
	err := r.db.Where("id = ?", id).First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrClaimNotFound
		}
		return nil, err
	}
	return claim.FromDataModel(&m), nil
}

func (r *ClaimRepository) GetByUserID(userID int64, limit, offset int) ([]*claim.Claim, error) {
	var models []*claimDatamodel.Claim
	err := r.db.Where("submitter_id = ?", userID).
		Order("submitted_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return claim.FromDataModelSlice(models), nil
}

func (r *ClaimRepository) GetAllClaims(limit, offset int) ([]*claim.Claim, error) {
	var models []*claimDatamodel.Claim
	err := r.db.
		Order("submitted_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return claim.FromDataModelSlice(models), nil
}

// GetOpenClaims retrieves claims still awaiting at least one track decision,
// FIFO so the oldest submissions are auto-reviewed first.
func (r *ClaimRepository) GetOpenClaims() ([]*claim.Claim, error) {
	var models []*claimDatamodel.Claim
	err := r.db.Where("claim_status IN ?", []string{string(claim.StatusPending), string(claim.StatusPendingConfirm)}).
		Order("submitted_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return claim.FromDataModelSlice(models), nil
}

func (r *ClaimRepository) Update(c *claim.Claim) error {
	c.UpdatedAt = time.Now()
	return r.db.Save(claim.ToDataModel(c)).Error
}
