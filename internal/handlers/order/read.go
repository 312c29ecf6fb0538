package order

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"grocery_back_end/internal/database"
	"grocery_back_end/internal/middleware"
	"grocery_back_end/internal/models"
)

// Lignes produits de toutes les commandes, éclatées par image. Les listings
// récupèrent l'ensemble puis rattachent en mémoire, comme les vues détail
// mais sans filtre.
const queryAllLines = `SELECT op.order_id, op.product_id, p.name, op.quantity, op.price, op.vat,
	pi.id AS image_id, pi.image_url
	FROM order_products op
	LEFT JOIN products p ON p.id = op.product_id
	LEFT JOIN product_images pi ON pi.product_id = op.product_id`

// GetByID renvoie une commande avec adresse imbriquée, propriétaire et
// lignes produits recomposées.
// GET /api/v1/order/:id
func GetByID(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "order Id is required in params"})
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	fetchOrderDetail(c, ctx, id, 0)
}

// GetByIDVerified est la variante client de la vue détail : la commande doit
// appartenir à l'appelant.
// GET /api/v1/order/single/:id
func GetByIDVerified(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "order Id is required in params"})
		return
	}

	userID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "You are not logged in"})
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	fetchOrderDetail(c, ctx, id, userID)
}

// fetchOrderDetail partage la vue détail. Quand ownerID est non nul la
// commande doit lui appartenir ; la propriété d'autrui est indiscernable
// d'une commande absente.
func fetchOrderDetail(c *gin.Context, ctx context.Context, orderID, ownerID int64) {
	rows, err := database.OrderByID(ctx, orderID)
	if err != nil {
		serverError(c, "An error occurred while fetching the order", err)
		return
	}

	var order *models.OrderView
	if rows.Next() {
		order, err = models.ScanOrderRow(rows)
	}
	rows.Close()
	if err != nil {
		serverError(c, "An error occurred while fetching the order", err)
		return
	}

	if order == nil || (ownerID != 0 && order.CreatedBy != ownerID) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Order not found"})
		return
	}

	if user, err := fetchUser(ctx, order.CreatedBy); err == nil {
		order.User = user
	} else {
		log.Printf("⚠️  Propriétaire introuvable pour la commande %d: %v", orderID, err)
	}

	lineRows, err := database.OrderLines(ctx, orderID)
	if err != nil {
		serverError(c, "An error occurred while fetching the order", err)
		return
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var (
			productID        sql.NullInt64
			name             sql.NullString
			quantity         int
			price, vat       float64
			imageID          sql.NullInt64
			imageURL         sql.NullString
		)
		if err := lineRows.Scan(&productID, &name, &quantity, &price, &vat, &imageID, &imageURL); err != nil {
			serverError(c, "An error occurred while fetching the order", err)
			return
		}
		order.AddLineRow(productID, name, quantity, price, vat, imageID, imageURL)
	}
	if err := lineRows.Err(); err != nil {
		serverError(c, "An error occurred while fetching the order", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// GetMine liste les commandes du client authentifié, filtrables par statut.
// GET /api/v1/order/my?order_status=
func GetMine(c *gin.Context) {
	userID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "You are not logged in"})
		return
	}

	listUserOrders(c, userID)
}

// GetForUser liste les commandes d'un utilisateur donné (vue admin).
// GET /api/v1/order/user/:id?order_status=
func GetForUser(c *gin.Context) {
	userID, ok := paramID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "user id is required in params"})
		return
	}

	listUserOrders(c, userID)
}

func listUserOrders(c *gin.Context, userID int64) {
	ctx, cancel := withTimeout(c)
	defer cancel()

	query := `SELECT ` + database.OrderSelectColumns + ` ` + database.OrderFromClause + ` WHERE o.created_by = ?`
	args := []interface{}{userID}

	if status := c.Query("order_status"); status != "" {
		query += ` AND o.order_status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY o.id DESC`

	orders, byID, err := collectOrders(ctx, query, args...)
	if err != nil {
		serverError(c, "An error occurred while fetching the orders", err)
		return
	}

	if len(orders) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "No orders found"})
		return
	}

	if err := attachAllLines(ctx, byID); err != nil {
		serverError(c, "An error occurred while fetching the orders", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"totalOrders": len(orders),
		"message":     "Get User All Orders",
		"data":        orders,
	})
}

// GetAll liste toutes les commandes, filtrées par statut, utilisateur et
// plage de dates élargie à la journée complète à chaque borne.
// GET /api/v1/order/all?order_status=&fromDate=&toDate=&user_id=
func GetAll(c *gin.Context) {
	ctx, cancel := withTimeout(c)
	defer cancel()

	query, args := buildListQuery(c)

	orders, byID, err := collectOrders(ctx, query, args...)
	if err != nil {
		serverError(c, "An error occurred while fetching the orders", err)
		return
	}

	if len(orders) == 0 {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "No orders found", "data": []models.OrderView{}})
		return
	}

	if err := attachAllLines(ctx, byID); err != nil {
		serverError(c, "An error occurred while fetching the orders", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"totalOrders": len(orders),
		"data":        orders,
	})
}

// GetLean est le listing filtré sans lignes produits.
// GET /api/v1/order/getOrders?order_status=&fromDate=&toDate=&user_id=
func GetLean(c *gin.Context) {
	ctx, cancel := withTimeout(c)
	defer cancel()

	query, args := buildListQuery(c)

	orders, _, err := collectOrders(ctx, query, args...)
	if err != nil {
		serverError(c, "An error occurred while fetching the orders", err)
		return
	}

	if len(orders) == 0 {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "No orders found", "data": []models.OrderView{}})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"totalOrders": len(orders),
		"data":        orders,
	})
}

// GetBatch renvoie un lot de commandes par liste d'ids, chaque commande avec
// ses produits, plus un listing produits global dédupliqué avec quantités
// sommées sur le lot.
// GET /api/v1/order/array?ordersID=1&ordersID=2 (ou ordersID=[1,2])
func GetBatch(c *gin.Context) {
	ids := parseOrderIDs(c)
	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ordersID is required in query"})
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	query := `SELECT ` + database.OrderSelectColumns + ` ` + database.OrderFromClause +
		` WHERE o.id IN (` + placeholders(len(ids)) + `) ORDER BY o.id DESC`

	orders, byID, err := collectOrders(ctx, query, ids...)
	if err != nil {
		serverError(c, "An error occurred while fetching the orders", err)
		return
	}

	if len(orders) == 0 {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "No orders found", "data": []models.OrderView{}})
		return
	}

	products, byOrder, err := fetchBatchProducts(ctx, ids)
	if err != nil {
		serverError(c, "An error occurred while fetching the orders", err)
		return
	}

	type batchOrder struct {
		*models.OrderView
		BatchProducts []models.ArrayProduct `json:"products"`
	}

	data := make([]batchOrder, 0, len(orders))
	for _, o := range orders {
		data = append(data, batchOrder{OrderView: byID[o.ID], BatchProducts: byOrder[o.ID]})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"data":        data,
		"allProducts": aggregateProducts(products),
	})
}

// --- helpers ---

func serverError(c *gin.Context, message string, err error) {
	log.Printf("❌ %s: %v", message, err)
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": message, "error": err.Error()})
}

// buildListQuery assemble le listing filtré. Les bornes de dates sont
// élargies à 00:00:00 / 23:59:59.
func buildListQuery(c *gin.Context) (string, []interface{}) {
	query := `SELECT ` + database.OrderSelectColumns + ` ` + database.OrderFromClause
	var clauses []string
	var args []interface{}

	if status := c.Query("order_status"); status != "" {
		clauses = append(clauses, `o.order_status = ?`)
		args = append(args, status)
	}
	if userID := c.Query("user_id"); userID != "" {
		clauses = append(clauses, `o.created_by = ?`)
		args = append(args, userID)
	}

	fromDate, toDate := c.Query("fromDate"), c.Query("toDate")
	if fromDate != "" && toDate != "" {
		clauses = append(clauses, `o.created_at BETWEEN ? AND ?`)
		args = append(args, fromDate+" 00:00:00", toDate+" 23:59:59")
	}

	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, ` AND `)
	}
	query += ` ORDER BY o.id DESC`

	return query, args
}

func collectOrders(ctx context.Context, query string, args ...interface{}) ([]*models.OrderView, map[int64]*models.OrderView, error) {
	rows, err := database.MySQL.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var orders []*models.OrderView
	byID := make(map[int64]*models.OrderView)

	for rows.Next() {
		o, err := models.ScanOrderRow(rows)
		if err != nil {
			return nil, nil, err
		}
		orders = append(orders, o)
		byID[o.ID] = o
	}
	return orders, byID, rows.Err()
}

// attachAllLines rattache les lignes produits aux commandes du lot en une
// seule requête, en regroupant l'éclatement par image.
func attachAllLines(ctx context.Context, byID map[int64]*models.OrderView) error {
	rows, err := database.MySQL.QueryContext(ctx, queryAllLines)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID    int64
			productID  sql.NullInt64
			name       sql.NullString
			quantity   int
			price, vat float64
			imageID    sql.NullInt64
			imageURL   sql.NullString
		)
		if err := rows.Scan(&orderID, &productID, &name, &quantity, &price, &vat, &imageID, &imageURL); err != nil {
			return err
		}

		order, ok := byID[orderID]
		if !ok {
			continue
		}
		order.AddLineRow(productID, name, quantity, price, vat, imageID, imageURL)
	}
	return rows.Err()
}

func fetchUser(ctx context.Context, userID int64) (*models.UserInfo, error) {
	rows, err := database.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, sql.ErrNoRows
	}

	var (
		u                  models.UserInfo
		name, email, phone sql.NullString
	)
	if err := rows.Scan(&u.ID, &name, &email, &phone); err != nil {
		return nil, err
	}
	if name.Valid {
		u.Name = &name.String
	}
	if email.Valid {
		u.Email = &email.String
	}
	if phone.Valid {
		u.Phone = &phone.String
	}
	return &u, rows.Err()
}

// parseOrderIDs accepte ordersID répété ou une liste [1,2,3].
func parseOrderIDs(c *gin.Context) []interface{} {
	raw := c.QueryArray("ordersID")
	if len(raw) == 1 {
		trimmed := strings.Trim(raw[0], "[]")
		raw = strings.Split(trimmed, ",")
	}

	var ids []interface{}
	for _, r := range raw {
		id, err := strconv.ParseInt(strings.TrimSpace(r), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// fetchBatchProducts charge les lignes produits d'un lot de commandes, avec
// nom, unité et première image du produit.
func fetchBatchProducts(ctx context.Context, ids []interface{}) ([]models.ArrayProduct, map[int64][]models.ArrayProduct, error) {
	query := `SELECT op.order_id, op.product_id, p.name, p.unit, op.quantity, op.price, op.vat
		FROM order_products op
		LEFT JOIN products p ON op.product_id = p.id
		WHERE op.order_id IN (` + placeholders(len(ids)) + `)`

	rows, err := database.MySQL.QueryContext(ctx, query, ids...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var products []models.ArrayProduct
	var productIDs []interface{}
	seen := make(map[int64]bool)

	for rows.Next() {
		var (
			p          models.ArrayProduct
			productID  sql.NullInt64
			name, unit sql.NullString
		)
		if err := rows.Scan(&p.OrderID, &productID, &name, &unit, &p.Quantity, &p.Price, &p.VAT); err != nil {
			return nil, nil, err
		}
		if productID.Valid {
			p.ProductID = &productID.Int64
			if !seen[productID.Int64] {
				seen[productID.Int64] = true
				productIDs = append(productIDs, productID.Int64)
			}
		}
		if name.Valid {
			p.Name = &name.String
		}
		if unit.Valid {
			p.Unit = &unit.String
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	images, err := fetchProductImages(ctx, productIDs)
	if err != nil {
		return nil, nil, err
	}

	byOrder := make(map[int64][]models.ArrayProduct)
	for i := range products {
		if products[i].ProductID != nil {
			products[i].Image = images[*products[i].ProductID]
		}
		byOrder[products[i].OrderID] = append(byOrder[products[i].OrderID], products[i])
	}
	return products, byOrder, nil
}

// fetchProductImages rend une image par produit (la première trouvée).
func fetchProductImages(ctx context.Context, productIDs []interface{}) (map[int64]string, error) {
	images := make(map[int64]string)
	if len(productIDs) == 0 {
		return images, nil
	}

	query := `SELECT product_id, image_url FROM product_images WHERE product_id IN (` + placeholders(len(productIDs)) + `)`
	rows, err := database.MySQL.QueryContext(ctx, query, productIDs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var productID int64
		var url string
		if err := rows.Scan(&productID, &url); err != nil {
			return nil, err
		}
		if _, ok := images[productID]; !ok {
			images[productID] = url
		}
	}
	return images, rows.Err()
}

// aggregateProducts déduplique le listing produits du lot en sommant les
// quantités par produit.
func aggregateProducts(products []models.ArrayProduct) []models.AggregatedProduct {
	var out []models.AggregatedProduct
	index := make(map[int64]int)

	for _, p := range products {
		if p.ProductID == nil {
			out = append(out, models.AggregatedProduct{Quantity: p.Quantity})
			continue
		}
		if i, ok := index[*p.ProductID]; ok {
			out[i].Quantity += p.Quantity
			continue
		}
		index[*p.ProductID] = len(out)
		out = append(out, models.AggregatedProduct{
			ProductID: p.ProductID,
			Name:      p.Name,
			Unit:      p.Unit,
			Quantity:  p.Quantity,
			Image:     p.Image,
		})
	}
	return out
}
