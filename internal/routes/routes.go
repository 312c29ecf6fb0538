package routes

import (
	"github.com/gin-gonic/gin"

	"grocery_back_end/internal/handlers/invoice"
	"grocery_back_end/internal/handlers/order"
	"grocery_back_end/internal/middleware"
)

// RegisterRoutes branche le module commande sous /api/v1. La disposition des
// gardes suit l'API historique : certaines lectures restent ouvertes.
func RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")

	user := middleware.AuthRequired()
	admin := middleware.RequireAdmin()
	ordersPerm := middleware.RequirePermission("orders")

	o := api.Group("/order")
	{
		o.POST("/create", user, order.Create)
		o.POST("/create/:id", order.CreateForUser)
		o.GET("/my", user, order.GetMine)
		o.GET("/array", order.GetBatch)
		o.GET("/user/:id", order.GetForUser)
		o.PUT("/status/update/:id", admin, ordersPerm, order.UpdateStatus)
		o.GET("/all", admin, ordersPerm, order.GetAll)
		o.GET("/getOrders", order.GetLean)
		o.GET("/single/:id", user, order.GetByIDVerified)
		o.GET("/:id", order.GetByID)
		o.PUT("/update-price/:id", admin, ordersPerm, order.UpdatePrice)
		o.PUT("/update/:id", admin, ordersPerm, order.UpdateOnePage)
		o.PUT("/date/:id", admin, ordersPerm, order.ChangeDate)
	}

	inv := api.Group("/invoice", admin, ordersPerm)
	{
		inv.GET("/order/:id", invoice.GetPDF)
		inv.POST("/order/:id/send", invoice.Send)
	}
}
