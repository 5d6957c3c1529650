package orders

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory repository for tests and local runs.
type MemoryRepo struct {
	mu     sync.Mutex
	orders []Order
}

func NewMemoryRepo(orders ...Order) *MemoryRepo {
	r := &MemoryRepo{orders: append([]Order(nil), orders...)}
	sort.Slice(r.orders, func(i, j int) bool { return r.orders[i].ID < r.orders[j].ID })
	return r
}

func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if offset >= len(r.orders) {
		return []Order{}, nil
	}
	end := offset + limit
	if end > len(r.orders) {
		end = len(r.orders)
	}
	out := make([]Order, end-offset)
	copy(out, r.orders[offset:end])
	return out, nil
}
