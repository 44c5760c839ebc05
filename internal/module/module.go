package module

import (
	"time"

	moduleDatamodel "github.com/frahmantamala/claim-management/internal/core/datamodel/module"
)

// Module is a teaching module that hours can be claimed against.
type Module struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *Module) IsClaimable() bool {
	return m.IsActive
}

func (m *Module) ToResponse() ModuleResponse {
	return ModuleResponse{
		Code: m.Code,
		Name: m.Name,
	}
}

func (m *Module) Deactivate() {
	m.IsActive = false
	m.UpdatedAt = time.Now()
}

func NewModule(code, name string) *Module {
	now := time.Now()
	return &Module{
		Code:      code,
		Name:      name,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func ToDataModel(m *Module) *moduleDatamodel.TeachingModule {
	return &moduleDatamodel.TeachingModule{
		ID:        m.ID,
		Code:      m.Code,
		Name:      m.Name,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func FromDataModel(m *moduleDatamodel.TeachingModule) *Module {
	return &Module{
		ID:        m.ID,
		Code:      m.Code,
		Name:      m.Name,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
