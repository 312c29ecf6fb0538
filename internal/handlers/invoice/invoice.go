// Package invoice génère la facture PDF d'une commande et son envoi par
// e-mail, à partir de la vue commande recomposée.
package invoice

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"grocery_back_end/internal/config"
	"grocery_back_end/internal/database"
	"grocery_back_end/internal/models"
	"grocery_back_end/internal/utils"
)

const queryTimeout = 10 * time.Second

// GetPDF rend la facture d'une commande en PDF.
// GET /api/v1/invoice/order/:id
func GetPDF(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || orderID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "order Id is required in params"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	order, err := loadOrder(ctx, orderID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Order not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "An error occurred while generating the invoice", "error": err.Error()})
		return
	}

	pdf, reference, err := buildInvoicePDF(order)
	if err != nil {
		log.Printf("❌ Échec génération facture commande %d: %v", orderID, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Invoice rendering unavailable", "error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="facture_%s.pdf"`, reference))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Send génère la facture et l'envoie au propriétaire de la commande.
// POST /api/v1/invoice/order/:id/send
func Send(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || orderID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "order Id is required in params"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	order, err := loadOrder(ctx, orderID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Order not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "An error occurred while generating the invoice", "error": err.Error()})
		return
	}

	email, err := ownerEmail(ctx, order.CreatedBy)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "No email address for this customer"})
		return
	}

	pdf, reference, err := buildInvoicePDF(order)
	if err != nil {
		log.Printf("❌ Échec génération facture commande %d: %v", orderID, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Invoice rendering unavailable", "error": err.Error()})
		return
	}

	subject := fmt.Sprintf("Votre facture %s", reference)
	body := utils.OrderStatusHTML(order.ID, order.OrderStatus)
	if err := utils.SendMail(email, subject, body, pdf, "facture_"+reference+".pdf"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "An error occurred while sending the invoice", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Invoice sent successfully"})
}

// buildInvoicePDF assemble référence, QR SEPA et rendu PDF.
func buildInvoicePDF(order *models.OrderView) ([]byte, string, error) {
	s := config.App
	reference := fmt.Sprintf("CMD-%d-%s", order.ID, strings.ToUpper(uuid.NewString()[:8]))

	qr, err := utils.GenerateSepaQR(s.CompanyIBAN, s.CompanyBIC, s.CompanyName, reference, order.Total)
	if err != nil {
		return nil, "", err
	}

	pdf, err := utils.RenderInvoicePDF(utils.InvoiceHTML(order, reference, qr))
	if err != nil {
		return nil, "", err
	}
	return pdf, reference, nil
}

// loadOrder recompose la vue commande (en-tête + lignes produits).
func loadOrder(ctx context.Context, orderID int64) (*models.OrderView, error) {
	rows, err := database.OrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var order *models.OrderView
	if rows.Next() {
		order, err = models.ScanOrderRow(rows)
	}
	rows.Close()
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, sql.ErrNoRows
	}

	lineRows, err := database.OrderLines(ctx, orderID)
	if err != nil {
		return nil, err
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var (
			productID  sql.NullInt64
			name       sql.NullString
			quantity   int
			price, vat float64
			imageID    sql.NullInt64
			imageURL   sql.NullString
		)
		if err := lineRows.Scan(&productID, &name, &quantity, &price, &vat, &imageID, &imageURL); err != nil {
			return nil, err
		}
		order.AddLineRow(productID, name, quantity, price, vat, imageID, imageURL)
	}
	return order, lineRows.Err()
}

func ownerEmail(ctx context.Context, userID int64) (string, error) {
	rows, err := database.UserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	if !rows.Next() {
		return "", sql.ErrNoRows
	}

	var (
		id                 int64
		name, email, phone sql.NullString
	)
	if err := rows.Scan(&id, &name, &email, &phone); err != nil {
		return "", err
	}
	if !email.Valid || email.String == "" {
		return "", sql.ErrNoRows
	}
	return email.String, nil
}
