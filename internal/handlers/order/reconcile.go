package order

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"grocery_back_end/internal/database"
	"grocery_back_end/internal/models"
)

// orderHeader porte les valeurs stockées servant de repli aux mises à jour :
// un champ omis (ou à zéro) dans la requête conserve la valeur existante.
type orderHeader struct {
	Company               sql.NullString
	CreatedBy             int64
	DeliveryDate          sql.NullTime
	PaymentMethod         sql.NullString
	SubTotal              float64
	Tax                   float64
	TaxAmount             float64
	DeliveryFee           float64
	Total                 float64
	UserDeliveryAddressID sql.NullInt64
}

const selectHeaderSQL = `SELECT company, created_by, delivery_date, payment_method,
	sub_total, tax, tax_amount, delivery_fee, total, user_delivery_address_id
	FROM orders WHERE id = ?`

const updateHeaderSQL = `UPDATE orders SET company = ?, created_by = ?, delivery_date = ?,
	payment_method = ?, sub_total = ?, tax = ?, tax_amount = ?, delivery_fee = ?, total = ?
	WHERE id = ?`

// UpdatePrice réconcilie une commande : mise à jour d'en-tête avec repli sur
// l'existant, puis remplacement intégral des lignes produits (suppression
// puis réinsertion du jeu reçu, sans diff).
// PUT /api/v1/order/update-price/:id
func UpdatePrice(c *gin.Context) {
	orderID, ok := paramID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "order Id is required in params"})
		return
	}

	var in models.OrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body", "error": err.Error()})
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	tx, err := database.MySQL.BeginTx(ctx, nil)
	if err != nil {
		serverError(c, "An error occurred while updating the order", err)
		return
	}
	defer tx.Rollback()

	header, err := fetchHeader(ctx, tx, orderID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "No Order found"})
		return
	}
	if err != nil {
		serverError(c, "An error occurred while updating the order", err)
		return
	}

	changed, err := updateHeader(ctx, tx, orderID, &in, header)
	if err != nil {
		serverError(c, "An error occurred while updating the order", err)
		return
	}

	replaced, err := replaceLines(ctx, tx, orderID, in.Products)
	if err != nil {
		serverError(c, "An error occurred while updating the order", err)
		return
	}

	if err := tx.Commit(); err != nil {
		serverError(c, "An error occurred while updating the order", err)
		return
	}

	if changed+replaced == 0 {
		c.JSON(http.StatusCreated, gin.H{"success": true, "message": "No Data change"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order and product prices updated successfully"})
}

// UpdateOnePage est la variante combinée : en-tête de commande, téléphone et
// contact de l'adresse de livraison, et nom de l'utilisateur propriétaire,
// les trois tables dans la même transaction.
// PUT /api/v1/order/update/:id
func UpdateOnePage(c *gin.Context) {
	orderID, ok := paramID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "order Id is required in params"})
		return
	}

	var in models.OrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body", "error": err.Error()})
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	tx, err := database.MySQL.BeginTx(ctx, nil)
	if err != nil {
		serverError(c, "An error occurred while updating the order", err)
		return
	}
	defer tx.Rollback()

	header, err := fetchHeader(ctx, tx, orderID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "No Order found"})
		return
	}
	if err != nil {
		serverError(c, "An error occurred while updating the order", err)
		return
	}

	changed, err := updateHeader(ctx, tx, orderID, &in, header)
	if err != nil {
		serverError(c, "An error occurred while updating the order", err)
		return
	}

	if header.UserDeliveryAddressID.Valid && (in.Phone != "" || in.Contact != "") {
		res, err := tx.ExecContext(ctx,
			`UPDATE user_delivery_address SET phone = COALESCE(NULLIF(?, ''), phone), contact = COALESCE(NULLIF(?, ''), contact) WHERE id = ?`,
			in.Phone, in.Contact, header.UserDeliveryAddressID.Int64)
		if err != nil {
			serverError(c, "An error occurred while updating the order", err)
			return
		}
		n, _ := res.RowsAffected()
		changed += n
	}

	if in.Name != "" {
		res, err := tx.ExecContext(ctx,
			`UPDATE users SET name = COALESCE(NULLIF(?, ''), name) WHERE id = ?`,
			in.Name, header.CreatedBy)
		if err != nil {
			serverError(c, "An error occurred while updating the order", err)
			return
		}
		n, _ := res.RowsAffected()
		changed += n
	}

	if err := tx.Commit(); err != nil {
		serverError(c, "An error occurred while updating the order", err)
		return
	}

	if changed == 0 {
		c.JSON(http.StatusCreated, gin.H{"success": true, "message": "No Data change"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order updated successfully"})
}

type dateInput struct {
	DeliveryDate string `json:"delivery_date"`
}

// ChangeDate ne touche que la date de livraison, hors transaction. Une
// valeur vide conserve la date existante, une valeur identique rend le
// signal « No Data change ».
// PUT /api/v1/order/date/:id
func ChangeDate(c *gin.Context) {
	orderID, ok := paramID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "order Id is required in params"})
		return
	}

	var in dateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body", "error": err.Error()})
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	var existing sql.NullTime
	err := database.MySQL.QueryRowContext(ctx,
		`SELECT delivery_date FROM orders WHERE id = ?`, orderID).Scan(&existing)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "No Order found"})
		return
	}
	if err != nil {
		serverError(c, "An error occurred while updating the order date", err)
		return
	}

	var value interface{}
	if in.DeliveryDate != "" {
		value = in.DeliveryDate
	} else if existing.Valid {
		value = existing.Time
	}

	res, err := database.MySQL.ExecContext(ctx,
		`UPDATE orders SET delivery_date = ? WHERE id = ?`, value, orderID)
	if err != nil {
		serverError(c, "An error occurred while updating the order date", err)
		return
	}

	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusCreated, gin.H{"success": true, "message": "No Data change"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order date updated successfully"})
}

// --- helpers de réconciliation ---

func fetchHeader(ctx context.Context, tx *sql.Tx, orderID int64) (*orderHeader, error) {
	var h orderHeader
	err := tx.QueryRowContext(ctx, selectHeaderSQL, orderID).Scan(
		&h.Company, &h.CreatedBy, &h.DeliveryDate, &h.PaymentMethod,
		&h.SubTotal, &h.Tax, &h.TaxAmount, &h.DeliveryFee, &h.Total,
		&h.UserDeliveryAddressID,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// updateHeader applique la politique « champ fourni sinon existant ». Un
// zéro légitime est indiscernable d'un champ omis et retombe donc sur la
// valeur stockée.
func updateHeader(ctx context.Context, tx *sql.Tx, orderID int64, in *models.OrderInput, h *orderHeader) (int64, error) {
	res, err := tx.ExecContext(ctx, updateHeaderSQL,
		coalesceString(in.Company, h.Company),
		coalesceInt(in.CreatedBy, h.CreatedBy),
		coalesceDate(in.DeliveryDate, h.DeliveryDate),
		coalesceString(in.PaymentMethod, h.PaymentMethod),
		coalesceFloat(in.SubTotal, h.SubTotal),
		coalesceFloat(in.Tax, h.Tax),
		coalesceFloat(in.TaxAmount, h.TaxAmount),
		coalesceFloat(in.DeliveryFee, h.DeliveryFee),
		coalesceFloat(in.Total, h.Total),
		orderID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// replaceLines remplace intégralement les lignes d'une commande. Le jeu
// entrant vide laisse la commande sans lignes.
func replaceLines(ctx context.Context, tx *sql.Tx, orderID int64, products []models.OrderProductInput) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM order_products WHERE order_id = ?`, orderID)
	if err != nil {
		return 0, err
	}
	deleted, _ := res.RowsAffected()

	var inserted int64
	for _, p := range products {
		res, err := tx.ExecContext(ctx, insertOrderProductSQL,
			orderID, p.ProductID, p.Quantity, p.Price, p.VAT)
		if err != nil {
			return 0, err
		}
		n, _ := res.RowsAffected()
		inserted += n
	}
	return deleted + inserted, nil
}

func coalesceString(v string, prev sql.NullString) interface{} {
	if v != "" {
		return v
	}
	return nullableString(prev)
}

func coalesceDate(v string, prev sql.NullTime) interface{} {
	if v != "" {
		return v
	}
	if !prev.Valid {
		return nil
	}
	return prev.Time
}

func coalesceFloat(v, prev float64) float64 {
	if v != 0 {
		return v
	}
	return prev
}

func coalesceInt(v, prev int64) int64 {
	if v != 0 {
		return v
	}
	return prev
}
