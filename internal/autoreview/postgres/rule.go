package postgres

import (
	"time"

	"github.com/frahmantamala/claim-management/internal"
	"github.com/frahmantamala/claim-management/internal/autoreview"
	ruleDatamodel "github.com/frahmantamala/claim-management/internal/core/datamodel/autoreview"
	"gorm.io/gorm"
)

// RuleRepository implements the autoreview.RuleRepository interface using GORM.
type RuleRepository struct {
	db *gorm.DB
}

func NewRuleRepository(db *gorm.DB) autoreview.RuleRepository {
	return &RuleRepository{db: db}
}

func (r *RuleRepository) Create(rule *autoreview.Rule) error {
	m := autoreview.ToDataModel(rule)
	if err := r.db.Create(m).Error; err != nil {
		return err
	}
	rule.ID = m.ID
	rule.CreatedAt = m.CreatedAt
	rule.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *RuleRepository) GetByID(id int64) (*autoreview.Rule, error) {
	var m ruleDatamodel.Rule
	err := r.db.Where("id = ?", id).First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrRuleNotFound
		}
		return nil, err
	}
	return autoreview.FromDataModel(&m), nil
}

// ListForReviewer returns the reviewer's rules ordered by priority so the
// engine can apply them lowest-precedence first.
func (r *RuleRepository) ListForReviewer(reviewerID int64) ([]*autoreview.Rule, error) {
	var models []*ruleDatamodel.Rule
	err := r.db.Where("reviewer_id = ?", reviewerID).
		Order("priority ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return autoreview.FromDataModelSlice(models), nil
}

func (r *RuleRepository) ListReviewerIDs() ([]int64, error) {
	var ids []int64
	err := r.db.Model(&ruleDatamodel.Rule{}).
		Distinct("reviewer_id").
		Pluck("reviewer_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *RuleRepository) Update(rule *autoreview.Rule) error {
	rule.UpdatedAt = time.Now()
	return r.db.Save(autoreview.ToDataModel(rule)).Error
}

func (r *RuleRepository) Delete(id int64) error {
	return r.db.Delete(&ruleDatamodel.Rule{}, id).Error
}
