package cart

import (
	"context"
	"fmt"
	"sync"

	"carrito-mascota-me/models"
	"carrito-mascota-me/utils"
)

// fakeCartRows is an in-memory stand-in for the cart_rows table. Update
// mimics SQL semantics: it touches every row matching the null-safe key.
type fakeCartRows struct {
	mu         sync.Mutex
	rows       []models.CartRow
	upserts    []models.CartRow
	updates    []models.CartRow
	deletes    []models.CartRow
	deleteAlls int
}

func (f *fakeCartRows) Fetch(ctx context.Context, userID string) ([]models.CartRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []models.CartRow
	for _, row := range f.rows {
		if row.UserID == userID {
			result = append(result, row)
		}
	}
	return result, nil
}

func (f *fakeCartRows) Upsert(ctx context.Context, userID, productID string, quantity int, size, color string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row := models.CartRow{
		UserID:        userID,
		ProductID:     utils.CanonicalProductID(productID),
		Quantity:      quantity,
		SelectedSize:  utils.NormalizeOption(size),
		SelectedColor: utils.NormalizeOption(color),
	}
	f.upserts = append(f.upserts, row)
	for i := range f.rows {
		if f.matchesLocked(&f.rows[i], userID, row.ProductID, row.SelectedSize, row.SelectedColor) {
			f.rows[i].Quantity = quantity
			return nil
		}
	}
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeCartRows) Update(ctx context.Context, userID, productID string, quantity int, size, color string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	canonical := utils.CanonicalProductID(productID)
	sizeNorm := utils.NormalizeOption(size)
	colorNorm := utils.NormalizeOption(color)
	f.updates = append(f.updates, models.CartRow{
		UserID:        userID,
		ProductID:     canonical,
		Quantity:      quantity,
		SelectedSize:  sizeNorm,
		SelectedColor: colorNorm,
	})
	for i := range f.rows {
		if f.matchesLocked(&f.rows[i], userID, canonical, sizeNorm, colorNorm) {
			f.rows[i].Quantity = quantity
		}
	}
	return nil
}

func (f *fakeCartRows) Delete(ctx context.Context, userID, productID string, size, color string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	canonical := utils.CanonicalProductID(productID)
	sizeNorm := utils.NormalizeOption(size)
	colorNorm := utils.NormalizeOption(color)
	f.deletes = append(f.deletes, models.CartRow{
		UserID:        userID,
		ProductID:     canonical,
		SelectedSize:  sizeNorm,
		SelectedColor: colorNorm,
	})
	kept := f.rows[:0]
	for i := range f.rows {
		if f.matchesLocked(&f.rows[i], userID, canonical, sizeNorm, colorNorm) {
			continue
		}
		kept = append(kept, f.rows[i])
	}
	f.rows = kept
	return nil
}

func (f *fakeCartRows) DeleteAll(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteAlls++
	kept := f.rows[:0]
	for _, row := range f.rows {
		if row.UserID != userID {
			kept = append(kept, row)
		}
	}
	f.rows = kept
	return nil
}

// matchesLocked applies the same canonical-or-legacy product id matching
// the real repository performs
func (f *fakeCartRows) matchesLocked(row *models.CartRow, userID, productID, size, color string) bool {
	if row.UserID != userID {
		return false
	}
	if utils.CanonicalProductID(row.ProductID) != productID {
		return false
	}
	return utils.NormalizeOption(row.SelectedSize) == size &&
		utils.NormalizeOption(row.SelectedColor) == color
}

func (f *fakeCartRows) upsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.upserts)
}

func (f *fakeCartRows) lastUpsert() models.CartRow {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upserts[len(f.upserts)-1]
}

func (f *fakeCartRows) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func (f *fakeCartRows) deleteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deletes)
}

func (f *fakeCartRows) deleteAllCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteAlls
}

// fakeCatalog serves catalog items from memory
type fakeCatalog struct {
	items []models.CatalogItem
}

func (f *fakeCatalog) GetCatalogItem(ctx context.Context, productID string) (*models.CatalogItem, error) {
	canonical := utils.CanonicalProductID(productID)
	for i := range f.items {
		if utils.CanonicalProductID(f.items[i].ID) == canonical {
			return &f.items[i], nil
		}
	}
	return nil, fmt.Errorf("product not found: id=%s", canonical)
}

func (f *fakeCatalog) GetCatalogItems(ctx context.Context) ([]models.CatalogItem, error) {
	return f.items, nil
}

// drainEvents reads everything currently buffered on a limit event channel
func drainEvents(ch <-chan models.LimitEvent) []models.LimitEvent {
	var events []models.LimitEvent
	for {
		select {
		case ev := <-ch:
			events = append(events, ev)
		default:
			return events
		}
	}
}
