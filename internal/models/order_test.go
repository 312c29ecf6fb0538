package models_test

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"

	"grocery_back_end/internal/models"
)

func TestStatusDateColumns(t *testing.T) {
	// chaque statut a exactement une colonne, et toutes sont distinctes
	seen := make(map[string]string)
	for status, column := range models.StatusDateColumns {
		assert.NotEmpty(t, column, "statut %q sans colonne", status)
		assert.NotContains(t, seen, column, "colonne %q partagée par %q et %q", column, status, seen[column])
		seen[column] = status
	}
	assert.Len(t, models.StatusDateColumns, 8)
}

func TestStatusDateColumn(t *testing.T) {
	col, ok := models.StatusDateColumn(models.StatusAnnule)
	assert.True(t, ok)
	assert.Equal(t, "annule_date", col)

	col, ok = models.StatusDateColumn(models.StatusEnPreparation)
	assert.True(t, ok)
	assert.Equal(t, "en_preparation_date", col)

	_, ok = models.StatusDateColumn("NotARealStatus")
	assert.False(t, ok)

	// la casse compte : pas de normalisation silencieuse
	_, ok = models.StatusDateColumn("annulé")
	assert.False(t, ok)
}

func TestAddLineRowGroupsImages(t *testing.T) {
	o := &models.OrderView{Products: []models.ProductLine{}}

	productID := sql.NullInt64{Int64: 7, Valid: true}
	name := sql.NullString{String: "Tomates", Valid: true}

	// trois lignes du fan-out : même produit, deux images
	o.AddLineRow(productID, name, 2, 50, 0, sql.NullInt64{Int64: 1, Valid: true}, sql.NullString{String: "a.jpg", Valid: true})
	o.AddLineRow(productID, name, 2, 50, 0, sql.NullInt64{Int64: 2, Valid: true}, sql.NullString{String: "b.jpg", Valid: true})
	o.AddLineRow(sql.NullInt64{Int64: 9, Valid: true}, sql.NullString{String: "Pommes", Valid: true}, 1, 10, 0, sql.NullInt64{}, sql.NullString{})

	assert.Len(t, o.Products, 2)

	assert.Equal(t, int64(7), *o.Products[0].ProductID)
	assert.Equal(t, "Tomates", *o.Products[0].Name)
	assert.Equal(t, 2, o.Products[0].Quantity)
	assert.Equal(t, 50.0, o.Products[0].Price)
	assert.Len(t, o.Products[0].Images, 2)
	assert.Equal(t, "a.jpg", o.Products[0].Images[0].ImageURL)
	assert.Equal(t, "b.jpg", o.Products[0].Images[1].ImageURL)

	// produit sans image : liste vide, pas nil
	assert.NotNil(t, o.Products[1].Images)
	assert.Len(t, o.Products[1].Images, 0)
}

func TestAddLineRowDeletedProduct(t *testing.T) {
	o := &models.OrderView{Products: []models.ProductLine{}}

	// produit supprimé : product_id et name NULL après le LEFT JOIN
	o.AddLineRow(sql.NullInt64{}, sql.NullString{}, 3, 12.5, 0, sql.NullInt64{}, sql.NullString{})

	assert.Len(t, o.Products, 1)
	assert.Nil(t, o.Products[0].ProductID)
	assert.Nil(t, o.Products[0].Name)
	assert.Equal(t, 3, o.Products[0].Quantity)
}

func TestHasPermission(t *testing.T) {
	admin := &models.AdminIdentity{
		Permissions: []models.Permission{
			{Section: "orders", Name: "manage"},
			{Section: "products", Name: "read"},
		},
	}

	assert.True(t, admin.HasPermission("orders"))
	assert.True(t, admin.HasPermission("products"))
	assert.False(t, admin.HasPermission("settings"))
}
