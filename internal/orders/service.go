package orders

import (
	"context"

	"alphabook/internal/rbac"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Repository is the read contract for orders.
type Repository interface {
	List(ctx context.Context, limit, offset int) ([]Order, error)
}

// Service lists orders shaped for the caller's role. Authorization of the
// listing itself happens before the call; this only decides visibility.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListVisible returns each order projected to the fields role may read.
func (s *Service) ListVisible(ctx context.Context, role rbac.Role, limit, offset int) ([]map[string]any, error) {
	limit, offset = clampPage(limit, offset)

	list, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	fields := rbac.FieldSelection(role, rbac.ResourceOrders)
	out := make([]map[string]any, 0, len(list))
	for _, o := range list {
		out = append(out, fields.Project(o.Fields()))
	}
	return out, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
