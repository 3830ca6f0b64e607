package cart

import (
	"context"
	"fmt"
	"log"

	"carrito-mascota-me/models"
	"carrito-mascota-me/repository"
	"carrito-mascota-me/utils"
)

// Reconciler rebuilds a sanitized cart from persisted rows at session
// start: it merges duplicate rows, re-validates every line against current
// stock and repairs previously persisted violations.
type Reconciler struct {
	rows    repository.CartRowRepositoryInterface
	catalog repository.CatalogRepositoryInterface
}

// NewReconciler creates a new Reconciler
func NewReconciler(rows repository.CartRowRepositoryInterface, catalog repository.CatalogRepositoryInterface) *Reconciler {
	return &Reconciler{
		rows:    rows,
		catalog: catalog,
	}
}

// Hydrate loads the persisted cart for a user and returns the sanitized,
// deduplicated line set:
//  1. rows whose product resolves under neither encoding are dropped
//     (discontinued products)
//  2. rows collapsing to one identity key merge by summing quantities
//  3. quantities above the current stock ceiling are clamped and the
//     correction written back; a ceiling of zero drops the line
//
// Running it twice with no intervening mutation yields the same set.
func (rc *Reconciler) Hydrate(ctx context.Context, userID string) ([]models.CartLine, error) {
	log.Printf("🔄 Hydrate: Reconciling cart for user_id=%s", userID)

	rows, err := rc.rows.Fetch(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cart rows: %w", err)
	}
	if len(rows) == 0 {
		log.Printf("✅ Hydrate: No persisted rows for user_id=%s", userID)
		return nil, nil
	}

	items, err := rc.catalog.GetCatalogItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	// Index under raw and canonical ids so legacy zero-padded rows still
	// resolve
	byID := make(map[string]*models.CatalogItem, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
		byID[utils.CanonicalProductID(items[i].ID)] = &items[i]
	}

	var order []lineKey
	merged := make(map[lineKey]*models.CartLine)
	dropped := 0

	for _, row := range rows {
		item := rc.resolveItem(byID, row.ProductID)
		if item == nil {
			log.Printf("⚠️ Hydrate: Dropping row for unresolved product_id=%s", row.ProductID)
			dropped++
			continue
		}

		key := keyOf(item.ID, row.SelectedSize, row.SelectedColor)
		if line, exists := merged[key]; exists {
			log.Printf("🔄 Hydrate: Merging duplicate row for product_id=%s (qty %d + %d)", key.productID, line.Quantity, row.Quantity)
			line.Quantity += row.Quantity
			continue
		}

		merged[key] = &models.CartLine{
			ProductID:     key.productID,
			Name:          item.Name,
			Quantity:      row.Quantity,
			SelectedSize:  key.size,
			SelectedColor: key.color,
			Price:         item.Price,
			MarketPrice:   item.MarketPrice,
			Stock:         item.Stock,
			Variants:      item.Variants,
		}
		order = append(order, key)
	}

	var result []models.CartLine
	for _, key := range order {
		line := merged[key]
		ceiling := LineCeiling(line)

		if line.Quantity > ceiling {
			if ceiling == 0 {
				log.Printf("⚠️ Hydrate: Dropping line for product_id=%s, selection no longer in stock", key.productID)
				dropped++
				continue
			}
			log.Printf("🔄 Hydrate: Clamping product_id=%s from qty=%d to ceiling=%d", key.productID, line.Quantity, ceiling)
			line.Quantity = ceiling
			// Write-through repair so the persisted cart stops violating
			// current stock
			if err := rc.rows.Update(ctx, userID, key.productID, ceiling, key.size, key.color); err != nil {
				log.Printf("❌ Hydrate: Corrective write failed for product_id=%s: %v", key.productID, err)
			}
		}

		result = append(result, *line)
	}

	log.Printf("✅ Hydrate: Reconciled %d rows into %d lines for user_id=%s (%d dropped)", len(rows), len(result), userID, dropped)
	return result, nil
}

// resolveItem looks a product up under its canonical id first, then the
// raw persisted id, then the alternate legacy encoding
func (rc *Reconciler) resolveItem(byID map[string]*models.CatalogItem, productID string) *models.CatalogItem {
	canonical := utils.CanonicalProductID(productID)
	if item, ok := byID[canonical]; ok {
		return item
	}
	if item, ok := byID[productID]; ok {
		log.Printf("🔄 resolveItem: product_id=%s resolved under raw encoding", productID)
		return item
	}
	if legacy := utils.LegacyProductID(productID); legacy != "" {
		if item, ok := byID[legacy]; ok {
			log.Printf("🔄 resolveItem: product_id=%s resolved under legacy encoding %s", productID, legacy)
			return item
		}
	}
	return nil
}
