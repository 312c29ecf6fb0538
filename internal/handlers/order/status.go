package order

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"grocery_back_end/internal/config"
	"grocery_back_end/internal/database"
	"grocery_back_end/internal/models"
	"grocery_back_end/internal/utils"
)

type statusInput struct {
	OrderStatus string `json:"order_status"`
}

// UpdateStatus applique une transition de statut : le statut doit appartenir
// à l'énumération, et seule la colonne d'horodatage du nouveau statut est
// tamponnée. Les transitions ne sont pas ordonnées entre elles.
// PUT /api/v1/order/status/update/:id
func UpdateStatus(c *gin.Context) {
	orderID, ok := paramID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "order Id is required in params"})
		return
	}

	var in statusInput
	if err := c.ShouldBindJSON(&in); err != nil || in.OrderStatus == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "order_status is required in body"})
		return
	}

	dateColumn, valid := models.StatusDateColumn(in.OrderStatus)
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid order status"})
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	var createdBy int64
	err := database.MySQL.QueryRowContext(ctx,
		`SELECT created_by FROM orders WHERE id = ?`, orderID).Scan(&createdBy)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "No Order found"})
		return
	}
	if err != nil {
		serverError(c, "Error in Update order status", err)
		return
	}

	// dateColumn sort d'une table statique, jamais de la requête
	query := fmt.Sprintf(`UPDATE orders SET order_status = ?, %s = ? WHERE id = ?`, dateColumn)
	now := time.Now().In(config.App.OrderLocation)

	if _, err := database.MySQL.ExecContext(ctx, query, in.OrderStatus, now, orderID); err != nil {
		serverError(c, "Error in Update order status", err)
		return
	}

	go notifyStatusChange(orderID, createdBy, in.OrderStatus)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order status updated successfully"})
}

// notifyStatusChange prévient le client par e-mail, en best-effort et hors
// du cycle de la requête.
func notifyStatusChange(orderID, userID int64, status string) {
	if config.App.SMTPUser == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	user, err := fetchUser(ctx, userID)
	if err != nil || user.Email == nil {
		log.Printf("⚠️  Pas d'e-mail pour l'utilisateur %d, notification ignorée", userID)
		return
	}

	if err := utils.SendOrderStatusEmail(*user.Email, orderID, status); err != nil {
		log.Printf("⚠️  Échec envoi e-mail statut commande %d: %v", orderID, err)
	}
}
