package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"grocery_back_end/internal/config"
	"grocery_back_end/internal/database"
	"grocery_back_end/internal/routes"
)

func main() {
	settings := config.Load()

	database.ConnectDatabases(settings)
	defer database.Close()

	// ✅ Initialiser les prepared statements pour les lectures commandes
	database.InitPreparedStatements()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "HEAD", "PUT", "PATCH", "POST", "DELETE"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))

	routes.RegisterRoutes(r)

	log.Println("🚀 Serveur grocery lancé sur le port", settings.Port)
	if err := r.Run(":" + settings.Port); err != nil {
		log.Fatalf("❌ Serveur arrêté: %v", err)
	}
}
