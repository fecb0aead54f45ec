package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mleong/mangobox-backend/pkg/db/models"
	"github.com/mleong/mangobox-backend/pkg/pagination"
)

// Repository defines persistence operations for the order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByNumber(ctx context.Context, number string) (*models.Order, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) (*OrderList, error)
	ListBetween(ctx context.Context, filter ListFilter) ([]models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	ReplaceLineItems(ctx context.Context, orderID uuid.UUID, items []models.OrderLineItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}
