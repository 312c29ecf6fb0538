package order_test

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"grocery_back_end/internal/config"
	"grocery_back_end/internal/database"
)

// setupTest branche un pool sqlmock à la place de MySQL et une config
// minimale. Redis reste nil : le cache admin est best-effort.
func setupTest(t *testing.T) (sqlmock.Sqlmock, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	old := database.SetTestDB(db)
	t.Cleanup(func() {
		db.Close()
		database.SetTestDB(old)
	})

	config.App = &config.Settings{
		JWTSecret:     "test-secret",
		CompanyName:   "Grocery SARL",
		OrderLocation: time.UTC,
	}

	return mock, gin.New()
}

// asUser simule AuthRequired en posant directement user_id dans le contexte.
func asUser(id int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", id)
		c.Next()
	}
}

func performJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		raw, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// orderColumns est la liste produite par database.OrderSelectColumns.
func orderColumns() []string {
	return []string{
		"id", "company", "created_by", "delivery_date", "payment_method",
		"sub_total", "tax", "tax_amount", "delivery_fee", "total",
		"user_delivery_address_id", "order_status",
		"recu_date", "en_preparation_date", "prete_pour_dispatch_date",
		"en_cours_de_livraison_date", "livre_date", "a_regler_date",
		"termine_date", "annule_date",
		"created_at", "updated_at",
		"phone", "contact", "address", "address_type", "city", "post_code", "message",
	}
}

// orderRowValues fabrique une ligne commande complète avec adresse jointe.
func orderRowValues(id, createdBy int64, status string, createdAt time.Time) []driver.Value {
	return []driver.Value{
		id, "ACME", createdBy, nil, "cash",
		100.0, 20.0, 20.0, 5.0, 125.0,
		int64(3), status,
		nil, nil, nil, nil, nil, nil, nil, nil,
		createdAt, nil,
		"0601020304", "Jean Dupont", "1 rue de la Paix", "home", "Paris", "75001", nil,
	}
}

func lineColumns() []string {
	return []string{"product_id", "name", "quantity", "price", "vat", "image_id", "image_url"}
}
