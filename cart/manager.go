package cart

import (
	"context"
	"log"
	"sync"

	"carrito-mascota-me/repository"
)

// guestKey is the map key for the shared anonymous session store
const guestKey = ""

// Manager hands out one Store per user, hydrating it from the persisted
// cart on first access. Guests (no user id) get a local-only store.
type Manager struct {
	mu     sync.Mutex
	stores map[string]*Store

	rows       repository.CartRowRepositoryInterface
	reconciler *Reconciler
	notifier   *LimitNotifier
}

// NewManager creates a new Manager
func NewManager(rows repository.CartRowRepositoryInterface, catalog repository.CatalogRepositoryInterface) *Manager {
	return &Manager{
		stores:     make(map[string]*Store),
		rows:       rows,
		reconciler: NewReconciler(rows, catalog),
		notifier:   NewLimitNotifier(),
	}
}

// Notifier exposes the shared limit-exceeded signal
func (m *Manager) Notifier() *LimitNotifier {
	return m.notifier
}

// StoreFor returns the store for a user, creating and hydrating it on
// first access. A hydration failure degrades to an empty cart instead of
// failing the request; the next hydration heals it.
func (m *Manager) StoreFor(ctx context.Context, userID string) *Store {
	m.mu.Lock()
	if store, exists := m.stores[userID]; exists {
		m.mu.Unlock()
		return store
	}

	var store *Store
	if userID == guestKey {
		log.Printf("🛒 StoreFor: Creating local-only guest store")
		store = NewStore(guestKey, nil, m.notifier)
	} else {
		store = NewStore(userID, m.rows, m.notifier)
	}
	m.stores[userID] = store
	m.mu.Unlock()

	if userID != guestKey {
		lines, err := m.reconciler.Hydrate(ctx, userID)
		if err != nil {
			log.Printf("❌ StoreFor: Hydration failed for user_id=%s, starting empty: %v", userID, err)
			return store
		}
		store.Replace(lines)
	}
	return store
}

// Rehydrate re-runs reconciliation for an already-known user and atomically
// replaces the store contents. Used when the UI signals a fresh session.
func (m *Manager) Rehydrate(ctx context.Context, userID string) error {
	if userID == guestKey {
		return nil
	}

	store := m.StoreFor(ctx, userID)
	lines, err := m.reconciler.Hydrate(ctx, userID)
	if err != nil {
		return err
	}
	store.Replace(lines)
	return nil
}
