package postgres

import (
	moduleDatamodel "github.com/frahmantamala/claim-management/internal/core/datamodel/module"
	"github.com/frahmantamala/claim-management/internal/module"
	"gorm.io/gorm"
)

type ModuleRepository struct {
	db *gorm.DB
}

func NewModuleRepository(db *gorm.DB) module.RepositoryAPI {
	return &ModuleRepository{db: db}
}

func (r *ModuleRepository) GetAll() ([]*moduleDatamodel.TeachingModule, error) {
	var modules []*moduleDatamodel.TeachingModule
	err := r.db.Order("code ASC").Find(&modules).Error
	return modules, err
}

func (r *ModuleRepository) GetByCode(code string) (*moduleDatamodel.TeachingModule, error) {
	var m moduleDatamodel.TeachingModule
	err := r.db.Where("code = ?", code).First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *ModuleRepository) Create(m *moduleDatamodel.TeachingModule) error {
	return r.db.Create(m).Error
}

func (r *ModuleRepository) Update(m *moduleDatamodel.TeachingModule) error {
	return r.db.Save(m).Error
}

func (r *ModuleRepository) Delete(id int64) error {
	return r.db.Model(&moduleDatamodel.TeachingModule{}).Where("id = ?", id).Update("is_active", false).Error
}
