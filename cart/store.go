package cart

import (
	"context"
	"log"
	"sync"
	"time"

	"carrito-mascota-me/models"
	"carrito-mascota-me/repository"
	"carrito-mascota-me/utils"
)

// syncTimeout bounds each background persistence call
const syncTimeout = 10 * time.Second

// lineKey is the identity key of a cart line: product id plus normalized
// size and color. Absent, "null" and "" selections collapse to one value.
type lineKey struct {
	productID string
	size      string
	color     string
}

func keyOf(productID, size, color string) lineKey {
	return lineKey{
		productID: utils.CanonicalProductID(productID),
		size:      utils.NormalizeOption(size),
		color:     utils.NormalizeOption(color),
	}
}

func keyOfLine(line *models.CartLine) lineKey {
	return keyOf(line.ProductID, line.SelectedSize, line.SelectedColor)
}

// Store is the in-memory source of truth for one user's cart.
// Every mutation locks, reads the latest state, decides and writes in a
// single critical section, so rapid repeated calls can never undercount
// quantity already held. Persistence runs in the background and is never
// awaited; remote writes carry absolute quantities so out-of-order
// completion converges.
type Store struct {
	mu     sync.Mutex
	userID string
	lines  []models.CartLine

	rows     repository.CartRowRepositoryInterface
	notifier *LimitNotifier

	subMu sync.Mutex
	subs  []chan models.CartState
}

// NewStore creates a Store for one user. A nil rows repository (guest
// session) disables persistence and keeps the cart local-only.
func NewStore(userID string, rows repository.CartRowRepositoryInterface, notifier *LimitNotifier) *Store {
	return &Store{
		userID:   userID,
		rows:     rows,
		notifier: notifier,
	}
}

// AddItem adds one unit of the product under the given selection, or
// increments the existing line. When the increment would exceed the stock
// ceiling the call is rejected and a limit event is raised instead.
func (s *Store) AddItem(item *models.CatalogItem, selectedSize, selectedColor string) {
	key := keyOf(item.ID, selectedSize, selectedColor)
	ceiling := StockCeiling(item, selectedSize, selectedColor)

	s.mu.Lock()

	// Aggregate across all matching lines, defensive against duplicates
	// that slipped in before reconciliation
	current := 0
	existing := -1
	for i := range s.lines {
		if keyOfLine(&s.lines[i]) == key {
			current += s.lines[i].Quantity
			if existing < 0 {
				existing = i
			}
		}
	}

	if current+1 > ceiling {
		s.mu.Unlock()
		log.Printf("⚠️ AddItem: Stock ceiling reached for product_id=%s (held=%d, ceiling=%d)", key.productID, current, ceiling)
		s.notifier.Notify(s.userID, key.productID, ceiling)
		return
	}

	var newQty int
	if existing >= 0 {
		s.lines[existing].Quantity++
		newQty = s.lines[existing].Quantity
	} else {
		s.lines = append(s.lines, models.CartLine{
			ProductID:     key.productID,
			Name:          item.Name,
			Quantity:      1,
			SelectedSize:  key.size,
			SelectedColor: key.color,
			Price:         item.Price,
			MarketPrice:   item.MarketPrice,
			Stock:         item.Stock,
			Variants:      item.Variants,
		})
		newQty = 1
	}
	s.mu.Unlock()

	log.Printf("🛒 AddItem: product_id=%s, size=%q, color=%q, qty=%d", key.productID, key.size, key.color, newQty)
	s.syncUpsert(key, newQty)
	s.broadcast()
}

// RemoveItem deletes the matching line. Removing a line that doesn't
// exist is a no-op.
func (s *Store) RemoveItem(productID, selectedSize, selectedColor string) {
	key := keyOf(productID, selectedSize, selectedColor)

	s.mu.Lock()
	removed := s.removeLocked(key)
	s.mu.Unlock()

	if !removed {
		log.Printf("⚠️ RemoveItem: No line for product_id=%s, nothing to remove", key.productID)
		return
	}

	log.Printf("🛒 RemoveItem: product_id=%s, size=%q, color=%q", key.productID, key.size, key.color)
	s.syncDelete(key)
	s.broadcast()
}

// UpdateQuantity applies a signed delta to the current quantity of the
// matching line. A result of zero or less removes the line; an increment
// past the stock ceiling is rejected with a limit event.
func (s *Store) UpdateQuantity(productID, selectedSize, selectedColor string, delta int) {
	key := keyOf(productID, selectedSize, selectedColor)

	s.mu.Lock()

	existing := -1
	for i := range s.lines {
		if keyOfLine(&s.lines[i]) == key {
			existing = i
			break
		}
	}
	if existing < 0 {
		s.mu.Unlock()
		log.Printf("⚠️ UpdateQuantity: No line for product_id=%s, nothing to update", key.productID)
		return
	}

	newQty := s.lines[existing].Quantity + delta

	if newQty <= 0 {
		s.removeLocked(key)
		s.mu.Unlock()
		log.Printf("🛒 UpdateQuantity: Quantity dropped to %d, removing product_id=%s", newQty, key.productID)
		s.syncDelete(key)
		s.broadcast()
		return
	}

	if delta > 0 {
		ceiling := LineCeiling(&s.lines[existing])
		if newQty > ceiling {
			s.mu.Unlock()
			log.Printf("⚠️ UpdateQuantity: Stock ceiling reached for product_id=%s (requested=%d, ceiling=%d)", key.productID, newQty, ceiling)
			s.notifier.Notify(s.userID, key.productID, ceiling)
			return
		}
	}

	s.lines[existing].Quantity = newQty
	s.mu.Unlock()

	log.Printf("🛒 UpdateQuantity: product_id=%s, delta=%d, qty=%d", key.productID, delta, newQty)
	s.syncUpdate(key, newQty)
	s.broadcast()
}

// ClearCart empties the cart
func (s *Store) ClearCart() {
	s.mu.Lock()
	s.lines = nil
	s.mu.Unlock()

	log.Printf("🛒 ClearCart: user_id=%s", s.userID)
	s.syncDeleteAll()
	s.broadcast()
}

// Replace swaps the entire cart contents in one step. Used by hydration
// so the UI never observes a partially reconciled cart.
func (s *Store) Replace(lines []models.CartLine) {
	s.mu.Lock()
	s.lines = append([]models.CartLine(nil), lines...)
	s.mu.Unlock()
	s.broadcast()
}

// State returns a snapshot of the current cart with totals
func (s *Store) State() models.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Subscribe returns a buffered channel receiving a state snapshot after
// every mutation. Slow subscribers miss snapshots instead of blocking.
func (s *Store) Subscribe() <-chan models.CartState {
	ch := make(chan models.CartState, limitEventBuffer)
	s.subMu.Lock()
	s.subs = append(s.subs, ch)
	s.subMu.Unlock()
	return ch
}

func (s *Store) stateLocked() models.CartState {
	state := models.CartState{
		Lines: append([]models.CartLine(nil), s.lines...),
	}
	for _, line := range s.lines {
		state.TotalPrice += line.Price * int64(line.Quantity)
		state.TotalQuantity += line.Quantity
	}
	return state
}

// removeLocked deletes every line matching key; caller holds s.mu
func (s *Store) removeLocked(key lineKey) bool {
	kept := s.lines[:0]
	removed := false
	for i := range s.lines {
		if keyOfLine(&s.lines[i]) == key {
			removed = true
			continue
		}
		kept = append(kept, s.lines[i])
	}
	s.lines = kept
	return removed
}

func (s *Store) broadcast() {
	state := s.State()
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- state:
		default:
		}
	}
}

// persistent reports whether this store writes through to the cart table.
// Guest sessions have no user id and stay local-only.
func (s *Store) persistent() bool {
	return s.rows != nil && s.userID != ""
}

// Background persistence. Each call carries the absolute target quantity
// captured at mutation time; failures are logged and the optimistic local
// state stays, since hydration self-heals on the next session.

func (s *Store) syncUpsert(key lineKey, quantity int) {
	if !s.persistent() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		if err := s.rows.Upsert(ctx, s.userID, key.productID, quantity, key.size, key.color); err != nil {
			log.Printf("❌ syncUpsert: Persistence failed for product_id=%s: %v", key.productID, err)
		}
	}()
}

func (s *Store) syncUpdate(key lineKey, quantity int) {
	if !s.persistent() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		if err := s.rows.Update(ctx, s.userID, key.productID, quantity, key.size, key.color); err != nil {
			log.Printf("❌ syncUpdate: Persistence failed for product_id=%s: %v", key.productID, err)
		}
	}()
}

func (s *Store) syncDelete(key lineKey) {
	if !s.persistent() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		if err := s.rows.Delete(ctx, s.userID, key.productID, key.size, key.color); err != nil {
			log.Printf("❌ syncDelete: Persistence failed for product_id=%s: %v", key.productID, err)
		}
	}()
}

func (s *Store) syncDeleteAll() {
	if !s.persistent() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		if err := s.rows.DeleteAll(ctx, s.userID); err != nil {
			log.Printf("❌ syncDeleteAll: Persistence failed for user_id=%s: %v", s.userID, err)
		}
	}()
}
