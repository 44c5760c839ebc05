package autoreview

import "time"

type Rule struct {
	ID         int64     `gorm:"primaryKey"`
	ReviewerID int64     `gorm:"column:reviewer_id;not null;index"`
	Priority   int       `gorm:"column:priority;not null;default:0"`
	Decision   string    `gorm:"column:decision;not null;default:pending"`
	Variable   string    `gorm:"column:variable;not null"`
	Operator   string    `gorm:"column:operator;not null"`
	Threshold  float64   `gorm:"column:threshold;not null"`
	Comment    *string   `gorm:"column:comment"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Rule) TableName() string {
	return "auto_review_rules"
}
