package repository

import (
	"context"

	"carrito-mascota-me/models"
)

// CartRowRepositoryInterface defines the contract for persisted cart row operations
type CartRowRepositoryInterface interface {
	Fetch(ctx context.Context, userID string) ([]models.CartRow, error)
	Upsert(ctx context.Context, userID, productID string, quantity int, size, color string) error
	Update(ctx context.Context, userID, productID string, quantity int, size, color string) error
	Delete(ctx context.Context, userID, productID string, size, color string) error
	DeleteAll(ctx context.Context, userID string) error
}

// CatalogRepositoryInterface defines the contract for catalog lookups
type CatalogRepositoryInterface interface {
	GetCatalogItem(ctx context.Context, productID string) (*models.CatalogItem, error)
	GetCatalogItems(ctx context.Context) ([]models.CatalogItem, error)
}
