package claim

import "time"

type Claim struct {
	ID          int64   `gorm:"primaryKey"`
	SubmitterID int64   `gorm:"column:submitter_id;not null"`
	ModuleCode  string  `gorm:"column:module_code;not null"`
	Description string  `gorm:"column:description"`
	HoursWorked float64 `gorm:"column:hours_worked;not null"`
	HourlyRate  float64 `gorm:"column:hourly_rate;not null"`

	CoordinatorID      *int64  `gorm:"column:coordinator_id"`
	CoordinatorOutcome string  `gorm:"column:coordinator_outcome;default:pending"`
	CoordinatorComment *string `gorm:"column:coordinator_comment"`

	ManagerID      *int64  `gorm:"column:manager_id"`
	ManagerOutcome string  `gorm:"column:manager_outcome;default:pending"`
	ManagerComment *string `gorm:"column:manager_comment"`

	ClaimStatus string    `gorm:"column:claim_status;default:pending"`
	Period      time.Time `gorm:"column:period;type:date"`
	SubmittedAt time.Time `gorm:"column:submitted_at"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Claim) TableName() string {
	return "claims"
}
