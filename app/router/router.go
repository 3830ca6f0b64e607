package router

import (
	"net/http"

	"carrito-mascota-me/app/controller"
)

type Controllers struct {
	Cart *controller.CartController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func SetupRoutes(controllers *Controllers) {
	// Ping endpoint
	http.HandleFunc("/ping", pingHandler)

	// Cart state and clear
	http.HandleFunc("/cart", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			controllers.Cart.GetCart(w, r)
		case http.MethodDelete:
			controllers.Cart.ClearCart(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Cart line mutations
	http.HandleFunc("/cart/items", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			controllers.Cart.AddItem(w, r)
		case http.MethodPatch:
			controllers.Cart.UpdateItem(w, r)
		case http.MethodDelete:
			controllers.Cart.RemoveItem(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Re-run reconciliation (login / tab focus)
	http.HandleFunc("/cart/refresh", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		controllers.Cart.RefreshCart(w, r)
	})

	// Pending stock-limit warnings
	http.HandleFunc("/cart/alerts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		controllers.Cart.GetAlerts(w, r)
	})
}
