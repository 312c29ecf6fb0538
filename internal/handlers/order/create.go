package order

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"grocery_back_end/internal/config"
	"grocery_back_end/internal/database"
	"grocery_back_end/internal/middleware"
	"grocery_back_end/internal/models"
)

const insertOrderSQL = `INSERT INTO orders
	(company, created_by, delivery_date, payment_method, sub_total, tax,
	 tax_amount, delivery_fee, total, user_delivery_address_id, address, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertOrderProductSQL = `INSERT INTO order_products
	(order_id, product_id, quantity, price, vat)
	VALUES (?, ?, ?, ?, ?)`

// Create crée une commande pour le client authentifié.
// POST /api/v1/order/create
func Create(c *gin.Context) {
	userID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "You are not logged in"})
		return
	}

	createOrderFor(c, userID)
}

// CreateForUser crée une commande au nom d'un utilisateur donné (parcours
// admin / prise de commande téléphonique).
// POST /api/v1/order/create/:id
func CreateForUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "user id is required in params"})
		return
	}

	createOrderFor(c, userID)
}

func createOrderFor(c *gin.Context, createdBy int64) {
	var in models.OrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body", "error": err.Error()})
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	orderID, err := insertOrder(ctx, createdBy, &in)
	if err != nil {
		log.Printf("❌ Erreur création commande (user %d): %v", createdBy, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "An error occurred while creating the order",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Order created successfully",
		"order_id": orderID,
	})
}

// insertOrder écrit l'en-tête puis chaque ligne produit dans une seule
// transaction. Le rollback différé couvre tous les chemins de sortie ;
// après commit il ne fait rien.
func insertOrder(ctx context.Context, createdBy int64, in *models.OrderInput) (int64, error) {
	tx, err := database.MySQL.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	createdAt := time.Now().In(config.App.OrderLocation)

	res, err := tx.ExecContext(ctx, insertOrderSQL,
		nullIfEmpty(in.Company),
		createdBy,
		nullIfEmpty(in.DeliveryDate),
		nullIfEmpty(in.PaymentMethod),
		in.SubTotal,
		in.Tax,
		in.TaxAmount,
		in.DeliveryFee,
		in.Total,
		nullIfZero(in.UserDeliveryAddressID),
		nullIfEmpty(in.Address),
		createdAt,
	)
	if err != nil {
		return 0, err
	}

	orderID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, p := range in.Products {
		if _, err := tx.ExecContext(ctx, insertOrderProductSQL,
			orderID, p.ProductID, p.Quantity, p.Price, p.VAT); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return orderID, nil
}
