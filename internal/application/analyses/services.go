package analyses

import (
	"context"

	domain "github.com/bryanwahyu/invasive-watch/internal/domain/analyses"
)

type Service struct {
	repo domain.Repository
}

func NewService(repo domain.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*domain.Analysis, error) {
	return s.repo.Paginate(ctx, tenant, page, pageSize)
}

// LatestByRegion returns the most recent stored inference for a region
func (s *Service) LatestByRegion(ctx context.Context, tenant string, regionID string) (*domain.Analysis, error) {
	return s.repo.LatestByRegion(ctx, tenant, regionID)
}
