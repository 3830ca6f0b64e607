package repository

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"carrito-mascota-me/db"
	"carrito-mascota-me/models"
	"carrito-mascota-me/utils"
)

// CartRowRepository handles database operations for persisted cart rows.
// Product ids are canonicalized at this boundary; legacy zero-padded rows
// written by the old frontend are matched with a single retry under the
// padded encoding when the canonical one affects no row.
type CartRowRepository struct{}

// NewCartRowRepository creates a new CartRowRepository
func NewCartRowRepository() *CartRowRepository {
	return &CartRowRepository{}
}

// Ensure CartRowRepository implements CartRowRepositoryInterface
var _ CartRowRepositoryInterface = (*CartRowRepository)(nil)

// Fetch retrieves all persisted cart rows for a user.
// Rows come back raw: duplicates and legacy encodings included - the
// reconciler is responsible for healing them.
func (r *CartRowRepository) Fetch(ctx context.Context, userID string) ([]models.CartRow, error) {
	log.Printf("📦 Fetch: Loading cart rows for user_id=%s", userID)

	query := `
		SELECT user_id, product_id, quantity,
		       COALESCE(selected_size, '') as selected_size,
		       COALESCE(selected_color, '') as selected_color
		FROM cart_rows
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := db.DB.QueryContext(ctx, query, userID)
	if err != nil {
		log.Printf("❌ Fetch: Error fetching cart rows: %v", err)
		return nil, fmt.Errorf("failed to fetch cart rows: %w", err)
	}
	defer rows.Close()

	var result []models.CartRow
	for rows.Next() {
		var row models.CartRow
		err := rows.Scan(
			&row.UserID,
			&row.ProductID,
			&row.Quantity,
			&row.SelectedSize,
			&row.SelectedColor,
		)
		if err != nil {
			log.Printf("❌ Fetch: Error scanning cart row: %v", err)
			continue
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		log.Printf("❌ Fetch: Error iterating cart rows: %v", err)
		return nil, fmt.Errorf("failed to iterate cart rows: %w", err)
	}

	log.Printf("✅ Fetch: Loaded %d cart rows for user_id=%s", len(result), userID)
	return result, nil
}

// Upsert inserts or replaces a cart row with an absolute quantity.
// Conflict key is (user_id, product_id, selected_size, selected_color);
// size/color are stored as '' when absent so NULL representations never
// split one logical line into two rows.
func (r *CartRowRepository) Upsert(ctx context.Context, userID, productID string, quantity int, size, color string) error {
	opID := uuid.NewString()
	canonicalID := utils.CanonicalProductID(productID)
	sizeNorm := utils.NormalizeOption(size)
	colorNorm := utils.NormalizeOption(color)
	log.Printf("📦 Upsert[%s]: user_id=%s, product_id=%s, qty=%d, size=%q, color=%q",
		opID, userID, canonicalID, quantity, sizeNorm, colorNorm)

	query := `
		INSERT INTO cart_rows (user_id, product_id, quantity, selected_size, selected_color, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id, product_id, selected_size, selected_color)
		DO UPDATE SET quantity = EXCLUDED.quantity
	`

	_, err := db.DB.ExecContext(ctx, query, userID, canonicalID, quantity, sizeNorm, colorNorm)
	if err != nil {
		log.Printf("❌ Upsert[%s]: Error upserting cart row: %v", opID, err)
		return fmt.Errorf("failed to upsert cart row: %w", err)
	}

	log.Printf("✅ Upsert[%s]: Persisted cart row", opID)
	return nil
}

// Update sets the absolute quantity of an existing cart row.
// When the canonical product id matches no row, retries once under the
// legacy zero-padded encoding before giving up.
func (r *CartRowRepository) Update(ctx context.Context, userID, productID string, quantity int, size, color string) error {
	opID := uuid.NewString()
	canonicalID := utils.CanonicalProductID(productID)
	sizeNorm := utils.NormalizeOption(size)
	colorNorm := utils.NormalizeOption(color)
	log.Printf("📦 Update[%s]: user_id=%s, product_id=%s, qty=%d, size=%q, color=%q",
		opID, userID, canonicalID, quantity, sizeNorm, colorNorm)

	query := `
		UPDATE cart_rows
		SET quantity = $1
		WHERE user_id = $2 AND product_id = $3
		  AND COALESCE(selected_size, '') = $4
		  AND COALESCE(selected_color, '') = $5
	`

	result, err := db.DB.ExecContext(ctx, query, quantity, userID, canonicalID, sizeNorm, colorNorm)
	if err != nil {
		log.Printf("❌ Update[%s]: Error updating cart row: %v", opID, err)
		return fmt.Errorf("failed to update cart row: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Printf("❌ Update[%s]: Error getting rows affected: %v", opID, err)
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected == 0 {
		legacyID := utils.LegacyProductID(canonicalID)
		if legacyID == "" {
			log.Printf("⚠️ Update[%s]: No row matched and no legacy encoding available", opID)
			return nil
		}
		log.Printf("🔄 Update[%s]: No row matched canonical id, retrying with legacy id=%s", opID, legacyID)
		_, err = db.DB.ExecContext(ctx, query, quantity, userID, legacyID, sizeNorm, colorNorm)
		if err != nil {
			log.Printf("❌ Update[%s]: Error updating cart row (legacy id): %v", opID, err)
			return fmt.Errorf("failed to update cart row: %w", err)
		}
	}

	log.Printf("✅ Update[%s]: Updated cart row", opID)
	return nil
}

// Delete removes a single cart row, trying the legacy product id encoding
// when the canonical one matches nothing. Deleting a missing row is a no-op.
func (r *CartRowRepository) Delete(ctx context.Context, userID, productID string, size, color string) error {
	opID := uuid.NewString()
	canonicalID := utils.CanonicalProductID(productID)
	sizeNorm := utils.NormalizeOption(size)
	colorNorm := utils.NormalizeOption(color)
	log.Printf("📦 Delete[%s]: user_id=%s, product_id=%s, size=%q, color=%q",
		opID, userID, canonicalID, sizeNorm, colorNorm)

	query := `
		DELETE FROM cart_rows
		WHERE user_id = $1 AND product_id = $2
		  AND COALESCE(selected_size, '') = $3
		  AND COALESCE(selected_color, '') = $4
	`

	result, err := db.DB.ExecContext(ctx, query, userID, canonicalID, sizeNorm, colorNorm)
	if err != nil {
		log.Printf("❌ Delete[%s]: Error deleting cart row: %v", opID, err)
		return fmt.Errorf("failed to delete cart row: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Printf("❌ Delete[%s]: Error getting rows affected: %v", opID, err)
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected == 0 {
		legacyID := utils.LegacyProductID(canonicalID)
		if legacyID == "" {
			log.Printf("⚠️ Delete[%s]: No row matched, nothing to delete", opID)
			return nil
		}
		log.Printf("🔄 Delete[%s]: No row matched canonical id, retrying with legacy id=%s", opID, legacyID)
		_, err = db.DB.ExecContext(ctx, query, userID, legacyID, sizeNorm, colorNorm)
		if err != nil {
			log.Printf("❌ Delete[%s]: Error deleting cart row (legacy id): %v", opID, err)
			return fmt.Errorf("failed to delete cart row: %w", err)
		}
	}

	log.Printf("✅ Delete[%s]: Deleted cart row", opID)
	return nil
}

// DeleteAll removes every cart row for a user
func (r *CartRowRepository) DeleteAll(ctx context.Context, userID string) error {
	opID := uuid.NewString()
	log.Printf("📦 DeleteAll[%s]: user_id=%s", opID, userID)

	query := `DELETE FROM cart_rows WHERE user_id = $1`

	result, err := db.DB.ExecContext(ctx, query, userID)
	if err != nil {
		log.Printf("❌ DeleteAll[%s]: Error clearing cart rows: %v", opID, err)
		return fmt.Errorf("failed to clear cart rows: %w", err)
	}

	affected, _ := result.RowsAffected()
	log.Printf("✅ DeleteAll[%s]: Deleted %d cart rows for user_id=%s", opID, affected, userID)
	return nil
}
