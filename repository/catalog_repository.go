package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"carrito-mascota-me/db"
	"carrito-mascota-me/models"
	"carrito-mascota-me/utils"
)

// CatalogRepository handles database reads against the product catalog.
// The catalog is owned by the admin backend; the cart engine only reads it.
type CatalogRepository struct{}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{}
}

// Ensure CatalogRepository implements CatalogRepositoryInterface
var _ CatalogRepositoryInterface = (*CatalogRepository)(nil)

const catalogItemColumns = `
	p.id, p.name, p.price, p.market_price, p.stock, p.is_active
`

// GetCatalogItem retrieves a single active product with its variants
func (r *CatalogRepository) GetCatalogItem(ctx context.Context, productID string) (*models.CatalogItem, error) {
	canonicalID := utils.CanonicalProductID(productID)
	log.Printf("🔍 GetCatalogItem: Fetching product_id=%s", canonicalID)

	query := `
		SELECT ` + catalogItemColumns + `
		FROM products p
		WHERE p.id = $1 AND p.is_active = true
	`

	var item models.CatalogItem
	err := db.DB.QueryRowContext(ctx, query, canonicalID).Scan(
		&item.ID,
		&item.Name,
		&item.Price,
		&item.MarketPrice,
		&item.Stock,
		&item.IsActive,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Printf("⚠️ GetCatalogItem: Product not found: id=%s", canonicalID)
			return nil, fmt.Errorf("product not found: id=%s", canonicalID)
		}
		log.Printf("❌ GetCatalogItem: Error fetching product: %v", err)
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}

	variants, err := r.fetchVariants(ctx, []string{item.ID})
	if err != nil {
		return nil, err
	}
	item.Variants = variants[item.ID]

	log.Printf("✓ GetCatalogItem: Fetched product id=%s with %d variants", item.ID, len(item.Variants))
	return &item, nil
}

// GetCatalogItems retrieves all active products with their variants in one
// pass. Used by hydration to resolve every persisted cart row without N
// round-trips.
func (r *CatalogRepository) GetCatalogItems(ctx context.Context) ([]models.CatalogItem, error) {
	log.Printf("🔍 GetCatalogItems: Fetching full catalog")

	query := `
		SELECT ` + catalogItemColumns + `
		FROM products p
		WHERE p.is_active = true
		ORDER BY p.id ASC
	`

	rows, err := db.DB.QueryContext(ctx, query)
	if err != nil {
		log.Printf("❌ GetCatalogItems: Error querying products: %v", err)
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var items []models.CatalogItem
	var ids []string
	for rows.Next() {
		var item models.CatalogItem
		err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Price,
			&item.MarketPrice,
			&item.Stock,
			&item.IsActive,
		)
		if err != nil {
			log.Printf("❌ GetCatalogItems: Error scanning product: %v", err)
			continue
		}
		items = append(items, item)
		ids = append(ids, item.ID)
	}

	if err := rows.Err(); err != nil {
		log.Printf("❌ GetCatalogItems: Error iterating products: %v", err)
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	variants, err := r.fetchVariants(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Variants = variants[items[i].ID]
	}

	log.Printf("✓ GetCatalogItems: Fetched %d products", len(items))
	return items, nil
}

// fetchVariants loads the ordered variant list for the given product ids,
// keyed by product id. Variant image sets are stored as JSON.
func (r *CatalogRepository) fetchVariants(ctx context.Context, productIDs []string) (map[string][]models.Variant, error) {
	result := make(map[string][]models.Variant)
	if len(productIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT pv.product_id, pv.color, pv.size, pv.quantity, COALESCE(pv.images, '[]')
		FROM product_variants pv
		WHERE pv.product_id = ANY($1)
		ORDER BY pv.product_id ASC, pv.position ASC
	`

	rows, err := db.DB.QueryContext(ctx, query, productIDs)
	if err != nil {
		log.Printf("❌ fetchVariants: Error querying variants: %v", err)
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID string
		var variant models.Variant
		var imagesJSON []byte

		err := rows.Scan(
			&productID,
			&variant.Color,
			&variant.Size,
			&variant.Quantity,
			&imagesJSON,
		)
		if err != nil {
			log.Printf("❌ fetchVariants: Error scanning variant: %v", err)
			continue
		}

		if err := json.Unmarshal(imagesJSON, &variant.Images); err != nil {
			log.Printf("⚠️ fetchVariants: Invalid images JSON for product_id=%s: %v", productID, err)
			variant.Images = nil
		}

		result[productID] = append(result[productID], variant)
	}

	if err := rows.Err(); err != nil {
		log.Printf("❌ fetchVariants: Error iterating variants: %v", err)
		return nil, fmt.Errorf("failed to iterate variants: %w", err)
	}

	return result, nil
}
