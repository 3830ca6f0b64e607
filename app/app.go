package app

import (
	"fmt"

	"carrito-mascota-me/app/controller"
	"carrito-mascota-me/app/router"
	"carrito-mascota-me/cart"
	"carrito-mascota-me/db"
	"carrito-mascota-me/repository"
)

// Initialize initializes the application
func Initialize() error {
	// Initialize database connection
	if err := db.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize repositories
	cartRowRepo := repository.NewCartRowRepository()
	catalogRepo := repository.NewCatalogRepository()

	// Initialize cart manager (per-user stores, hydrated on first access)
	manager := cart.NewManager(cartRowRepo, catalogRepo)

	// Create controllers
	controllers := &router.Controllers{
		Cart: controller.NewCartController(manager, catalogRepo),
	}

	// Setup routes using standard http router
	router.SetupRoutes(controllers)

	return nil
}
