package costentry

import (
	"context"
)

// Repository defines the interface for cost entry persistence operations
type Repository interface {
	Create(ctx context.Context, entry *CostEntry) error
	Get(ctx context.Context, id string) (*CostEntry, error)
	Update(ctx context.Context, entry *CostEntry) error
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]*CostEntry, error)
}
