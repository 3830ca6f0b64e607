package controller

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"carrito-mascota-me/cart"
	"carrito-mascota-me/models"
	"carrito-mascota-me/repository"
)

// alertBacklog caps how many undelivered limit events are kept per user
const alertBacklog = 32

// CartController handles HTTP requests for the shopping cart
type CartController struct {
	manager *cart.Manager
	catalog repository.CatalogRepositoryInterface

	alertMu sync.Mutex
	alerts  map[string][]models.LimitEvent
}

// NewCartController creates a new CartController and starts draining the
// limit-exceeded signal into per-user alert queues
func NewCartController(manager *cart.Manager, catalog repository.CatalogRepositoryInterface) *CartController {
	c := &CartController{
		manager: manager,
		catalog: catalog,
		alerts:  make(map[string][]models.LimitEvent),
	}

	events := manager.Notifier().Subscribe()
	go func() {
		for event := range events {
			c.alertMu.Lock()
			queue := append(c.alerts[event.UserID], event)
			if len(queue) > alertBacklog {
				queue = queue[len(queue)-alertBacklog:]
			}
			c.alerts[event.UserID] = queue
			c.alertMu.Unlock()
		}
	}()

	return c
}

// userID extracts the authenticated user from the request. An absent
// header means a guest session: the cart works but nothing persists.
func userID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-ID"))
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("❌ writeJSON: Error encoding response: %v", err)
	}
}

// GetCart handles GET /cart
func (c *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 GetCart: Received %s request to %s", r.Method, r.URL.Path)

	store := c.manager.StoreFor(r.Context(), userID(r))
	writeJSON(w, http.StatusOK, store.State())
}

// AddItem handles POST /cart/items
func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 AddItem: Received %s request to %s", r.Method, r.URL.Path)

	var req models.AddCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ AddItem: Failed to decode request body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.ProductID) == "" {
		log.Printf("❌ AddItem: productId cannot be empty")
		http.Error(w, "productId cannot be empty", http.StatusBadRequest)
		return
	}

	item, err := c.catalog.GetCatalogItem(r.Context(), req.ProductID)
	if err != nil {
		log.Printf("❌ AddItem: Error fetching product: %v", err)
		if strings.Contains(err.Error(), "not found") {
			http.Error(w, fmt.Sprintf("Product not found: %v", err), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to fetch product: %v", err), http.StatusInternalServerError)
		return
	}

	store := c.manager.StoreFor(r.Context(), userID(r))
	store.AddItem(item, req.SelectedSize, req.SelectedColor)
	writeJSON(w, http.StatusOK, store.State())
}

// UpdateItem handles PATCH /cart/items
func (c *CartController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 UpdateItem: Received %s request to %s", r.Method, r.URL.Path)

	var req models.UpdateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ UpdateItem: Failed to decode request body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.ProductID) == "" {
		log.Printf("❌ UpdateItem: productId cannot be empty")
		http.Error(w, "productId cannot be empty", http.StatusBadRequest)
		return
	}

	if req.Delta == 0 {
		log.Printf("❌ UpdateItem: delta cannot be 0")
		http.Error(w, "delta cannot be 0", http.StatusBadRequest)
		return
	}

	store := c.manager.StoreFor(r.Context(), userID(r))
	store.UpdateQuantity(req.ProductID, req.SelectedSize, req.SelectedColor, req.Delta)
	writeJSON(w, http.StatusOK, store.State())
}

// RemoveItem handles DELETE /cart/items
func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 RemoveItem: Received %s request to %s", r.Method, r.URL.Path)

	var req models.RemoveCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ RemoveItem: Failed to decode request body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.ProductID) == "" {
		log.Printf("❌ RemoveItem: productId cannot be empty")
		http.Error(w, "productId cannot be empty", http.StatusBadRequest)
		return
	}

	store := c.manager.StoreFor(r.Context(), userID(r))
	store.RemoveItem(req.ProductID, req.SelectedSize, req.SelectedColor)
	writeJSON(w, http.StatusOK, store.State())
}

// ClearCart handles DELETE /cart
func (c *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 ClearCart: Received %s request to %s", r.Method, r.URL.Path)

	store := c.manager.StoreFor(r.Context(), userID(r))
	store.ClearCart()
	writeJSON(w, http.StatusOK, store.State())
}

// RefreshCart handles POST /cart/refresh - re-runs reconciliation, used
// by the frontend on login or tab focus
func (c *CartController) RefreshCart(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 RefreshCart: Received %s request to %s", r.Method, r.URL.Path)

	uid := userID(r)
	if err := c.manager.Rehydrate(r.Context(), uid); err != nil {
		log.Printf("❌ RefreshCart: Error rehydrating cart: %v", err)
		http.Error(w, fmt.Sprintf("Failed to refresh cart: %v", err), http.StatusInternalServerError)
		return
	}

	store := c.manager.StoreFor(r.Context(), uid)
	writeJSON(w, http.StatusOK, store.State())
}

// GetAlerts handles GET /cart/alerts - returns and clears pending
// stock-limit warnings for the user
func (c *CartController) GetAlerts(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 GetAlerts: Received %s request to %s", r.Method, r.URL.Path)

	uid := userID(r)
	c.alertMu.Lock()
	pending := c.alerts[uid]
	delete(c.alerts, uid)
	c.alertMu.Unlock()

	if pending == nil {
		pending = []models.LimitEvent{}
	}
	writeJSON(w, http.StatusOK, pending)
}
