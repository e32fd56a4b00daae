package pos

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines data access for sales.
type Repository interface {
	// CommitSale stores the sale header and items and takes the sold units
	// out of stock. Either everything is applied or nothing is.
	CommitSale(ctx context.Context, s *Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	List(ctx context.Context, q SalesQuery) ([]*Sale, error)
}
