package main

import (
	"fmt"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/muh-hamada/german-telc-b1-sub000/analytics"
	"github.com/muh-hamada/german-telc-b1-sub000/config"
	"github.com/muh-hamada/german-telc-b1-sub000/database"
	"github.com/muh-hamada/german-telc-b1-sub000/handlers"
	"github.com/muh-hamada/german-telc-b1-sub000/routes"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize config with embedded .env.example contract
	// This must happen before any call to config.GetConfig()
	config.Init(envExampleContract)

	// Connect to MongoDB
	database.ConnectMongoDB()

	// Wire the reporting service; it owns the analytics cache
	handlers.InitAnalytics(analytics.NewService(database.NewMongoStore()))

	e := echo.New()

	// CORS must be the FIRST middleware to handle preflight OPTIONS requests
	// before any other middleware can interfere or return errors
	routes.ConfigureCORS(e)

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	routes.RegisterRoutes(e)

	cfg := config.GetConfig()
	port := cfg.Port
	if port == 0 {
		port = 1323
	}

	log.Printf("🚀 Starting server on port %d", port)
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
