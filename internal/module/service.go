package module

import (
	"log/slog"

	moduleDatamodel "github.com/frahmantamala/claim-management/internal/core/datamodel/module"
)

type RepositoryAPI interface {
	GetAll() ([]*moduleDatamodel.TeachingModule, error)
	GetByCode(code string) (*moduleDatamodel.TeachingModule, error)
	Create(module *moduleDatamodel.TeachingModule) error
	Update(module *moduleDatamodel.TeachingModule) error
	Delete(id int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetAllModules() ([]ModuleResponse, error) {
	dataModules, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get modules from repository", "error", err)
		return nil, err
	}

	var responses []ModuleResponse
	for _, dataModule := range dataModules {
		domainModule := FromDataModel(dataModule)
		if domainModule.IsClaimable() {
			responses = append(responses, domainModule.ToResponse())
		}
	}

	s.logger.Info("retrieved modules", "count", len(responses))
	return responses, nil
}

func (s *Service) GetModuleByCode(code string) (*Module, error) {
	dataModule, err := s.repo.GetByCode(code)
	if err != nil {
		s.logger.Error("failed to get module from repository", "code", code, "error", err)
		return nil, err
	}
	if dataModule == nil {
		return nil, nil
	}
	return FromDataModel(dataModule), nil
}

// ModuleExists reports whether a code refers to an active, claimable module.
func (s *Service) ModuleExists(code string) (bool, error) {
	domainModule, err := s.GetModuleByCode(code)
	if err != nil {
		s.logger.Warn("error checking module code", "code", code, "error", err)
		return false, err
	}
	return domainModule != nil && domainModule.IsClaimable(), nil
}
