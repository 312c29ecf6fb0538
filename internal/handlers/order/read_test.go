package order_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grocery_back_end/internal/handlers/order"
	"grocery_back_end/internal/models"
)

func TestGetByIDFoldsAddressUserAndLines(t *testing.T) {
	mock, r := setupTest(t)
	r.GET("/order/:id", order.GetByID)

	createdAt := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT o.id, o.company").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(orderColumns()).
			AddRow(orderRowValues(5, 9, models.StatusRecu, createdAt)...))
	mock.ExpectQuery("SELECT id, name, email, phone FROM users").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone"}).
			AddRow(int64(9), "Jean Dupont", "jean@example.com", "0601020304"))
	// éclatement produit×image : deux images pour le produit 7, aucune pour le 9
	mock.ExpectQuery("SELECT op.product_id, p.name").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(lineColumns()).
			AddRow(int64(7), "Tomates", 2, 50.0, 0.0, int64(1), "a.jpg").
			AddRow(int64(7), "Tomates", 2, 50.0, 0.0, int64(2), "b.jpg").
			AddRow(int64(9), "Pommes", 1, 10.0, 0.0, nil, nil))

	w := performJSON(r, http.MethodGet, "/order/5", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])

	o := body["order"].(map[string]interface{})
	assert.Equal(t, float64(5), o["id"])
	assert.Equal(t, models.StatusRecu, o["order_status"])

	address := o["user_delivery_address"].(map[string]interface{})
	assert.Equal(t, "Paris", address["city"])
	assert.Equal(t, "1 rue de la Paix", address["address"])

	user := o["userInfo"].(map[string]interface{})
	assert.Equal(t, "Jean Dupont", user["name"])

	products := o["products"].([]interface{})
	require.Len(t, products, 2)
	first := products[0].(map[string]interface{})
	assert.Equal(t, "Tomates", first["name"])
	assert.Len(t, first["images"].([]interface{}), 2)
	second := products[1].(map[string]interface{})
	assert.Len(t, second["images"].([]interface{}), 0)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	mock, r := setupTest(t)
	r.GET("/order/:id", order.GetByID)

	mock.ExpectQuery("SELECT o.id, o.company").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(orderColumns()))

	w := performJSON(r, http.MethodGet, "/order/99", nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Order not found", body["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

// La commande d'autrui répond exactement comme une commande absente.
func TestGetByIDVerifiedHidesForeignOrder(t *testing.T) {
	mock, r := setupTest(t)
	r.GET("/order/single/:id", asUser(5), order.GetByIDVerified)

	mock.ExpectQuery("SELECT o.id, o.company").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(orderColumns()).
			AddRow(orderRowValues(5, 9, models.StatusRecu, time.Now())...))

	w := performJSON(r, http.MethodGet, "/order/single/5", nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Order not found", body["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMineFiltersByStatus(t *testing.T) {
	mock, r := setupTest(t)
	r.GET("/order/my", asUser(5), order.GetMine)

	mock.ExpectQuery("SELECT o.id, o.company").
		WithArgs(int64(5), models.StatusLivre).
		WillReturnRows(sqlmock.NewRows(orderColumns()).
			AddRow(orderRowValues(3, 5, models.StatusLivre, time.Now())...))
	mock.ExpectQuery("SELECT op.order_id, op.product_id").
		WillReturnRows(sqlmock.NewRows(append([]string{"order_id"}, lineColumns()...)))

	w := performJSON(r, http.MethodGet, "/order/my?order_status="+url.QueryEscape(models.StatusLivre), nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["totalOrders"])
	assert.Equal(t, "Get User All Orders", body["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMineEmptyIs404(t *testing.T) {
	mock, r := setupTest(t)
	r.GET("/order/my", asUser(5), order.GetMine)

	mock.ExpectQuery("SELECT o.id, o.company").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(orderColumns()))

	w := performJSON(r, http.MethodGet, "/order/my", nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "No orders found", body["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Le listing global vide répond 200 avec success:false, pas 404.
func TestGetAllEmptyIs200(t *testing.T) {
	mock, r := setupTest(t)
	r.GET("/order/all", order.GetAll)

	mock.ExpectQuery("SELECT o.id, o.company").
		WillReturnRows(sqlmock.NewRows(orderColumns()))

	w := performJSON(r, http.MethodGet, "/order/all", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "No orders found", body["message"])
	assert.Len(t, body["data"].([]interface{}), 0)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllWidensDateBounds(t *testing.T) {
	mock, r := setupTest(t)
	r.GET("/order/all", order.GetAll)

	mock.ExpectQuery("SELECT o.id, o.company").
		WithArgs("2026-08-01 00:00:00", "2026-08-31 23:59:59").
		WillReturnRows(sqlmock.NewRows(orderColumns()).
			AddRow(orderRowValues(5, 9, models.StatusRecu, time.Now())...))
	mock.ExpectQuery("SELECT op.order_id, op.product_id").
		WillReturnRows(sqlmock.NewRows(append([]string{"order_id"}, lineColumns()...)).
			AddRow(int64(5), int64(7), "Tomates", 2, 50.0, 0.0, nil, nil))

	w := performJSON(r, http.MethodGet, "/order/all?fromDate=2026-08-01&toDate=2026-08-31", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["totalOrders"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLeanSkipsLines(t *testing.T) {
	mock, r := setupTest(t)
	r.GET("/order/getOrders", order.GetLean)

	// aucune requête lignes attendue : la vue reste en-tête seul
	mock.ExpectQuery("SELECT o.id, o.company").
		WillReturnRows(sqlmock.NewRows(orderColumns()).
			AddRow(orderRowValues(5, 9, models.StatusRecu, time.Now())...))

	w := performJSON(r, http.MethodGet, "/order/getOrders", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBatchAggregatesProducts(t *testing.T) {
	mock, r := setupTest(t)
	r.GET("/order/array", order.GetBatch)

	mock.ExpectQuery("SELECT o.id, o.company").
		WithArgs(int64(5), int64(6)).
		WillReturnRows(sqlmock.NewRows(orderColumns()).
			AddRow(orderRowValues(6, 9, models.StatusRecu, time.Now())...).
			AddRow(orderRowValues(5, 9, models.StatusRecu, time.Now())...))
	// produit 7 présent dans les deux commandes : quantités sommées (2+3)
	mock.ExpectQuery("SELECT op.order_id, op.product_id").
		WithArgs(int64(5), int64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "product_id", "name", "unit", "quantity", "price", "vat"}).
			AddRow(int64(5), int64(7), "Tomates", "kg", 2, 50.0, 0.0).
			AddRow(int64(6), int64(7), "Tomates", "kg", 3, 50.0, 0.0).
			AddRow(int64(6), int64(9), "Pommes", "kg", 1, 10.0, 0.0))
	mock.ExpectQuery("SELECT product_id, image_url FROM product_images").
		WithArgs(int64(7), int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "image_url"}).
			AddRow(int64(7), "a.jpg"))

	w := performJSON(r, http.MethodGet, "/order/array?ordersID=[5,6]", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["data"].([]interface{}), 2)

	all := body["allProducts"].([]interface{})
	require.Len(t, all, 2)
	tomates := all[0].(map[string]interface{})
	assert.Equal(t, "Tomates", tomates["name"])
	assert.Equal(t, float64(5), tomates["quantity"])
	assert.Equal(t, "a.jpg", tomates["image"])
	pommes := all[1].(map[string]interface{})
	assert.Equal(t, "Pommes", pommes["name"])
	assert.Equal(t, "", pommes["image"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBatchRequiresIDs(t *testing.T) {
	_, r := setupTest(t)
	r.GET("/order/array", order.GetBatch)

	w := performJSON(r, http.MethodGet, "/order/array", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
