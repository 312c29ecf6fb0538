package database

import (
	"context"
	"database/sql"
	"log"
	"sync"
)

// Colonnes commandes + adresse de livraison, partagées par tous les SELECT
// du module commande. L'ordre des colonnes est celui attendu par
// models.ScanOrderRow.
const OrderSelectColumns = `o.id, o.company, o.created_by, o.delivery_date, o.payment_method,
	o.sub_total, o.tax, o.tax_amount, o.delivery_fee, o.total,
	o.user_delivery_address_id, o.order_status,
	o.recu_date, o.en_preparation_date, o.prete_pour_dispatch_date,
	o.en_cours_de_livraison_date, o.livre_date, o.a_regler_date,
	o.termine_date, o.annule_date,
	o.created_at, o.updated_at,
	uda.phone, uda.contact, uda.address, uda.address_type, uda.city, uda.post_code, uda.message`

const OrderFromClause = `FROM orders o
	LEFT JOIN user_delivery_address uda ON o.user_delivery_address_id = uda.id`

const (
	QueryOrderByID = `SELECT ` + OrderSelectColumns + ` ` + OrderFromClause + ` WHERE o.id = ?`

	QueryOrderLines = `SELECT op.product_id, p.name, op.quantity, op.price, op.vat,
		pi.id AS image_id, pi.image_url
		FROM order_products op
		LEFT JOIN products p ON p.id = op.product_id
		LEFT JOIN product_images pi ON pi.product_id = op.product_id
		WHERE op.order_id = ?`

	QueryUserByID = `SELECT id, name, email, phone FROM users WHERE id = ?`
)

var (
	stmtOrderByID  *sql.Stmt
	stmtOrderLines *sql.Stmt
	stmtUserByID   *sql.Stmt

	preparedOnce sync.Once
)

// InitPreparedStatements prépare les requêtes les plus fréquentes du module
// commande. En cas d'échec on retombe sur des requêtes directes.
func InitPreparedStatements() {
	preparedOnce.Do(func() {
		var err error
		if stmtOrderByID, err = MySQL.Prepare(QueryOrderByID); err != nil {
			log.Printf("⚠️  Impossible de préparer les statements: %v", err)
			return
		}
		if stmtOrderLines, err = MySQL.Prepare(QueryOrderLines); err != nil {
			log.Printf("⚠️  Impossible de préparer les statements: %v", err)
			return
		}
		if stmtUserByID, err = MySQL.Prepare(QueryUserByID); err != nil {
			log.Printf("⚠️  Impossible de préparer les statements: %v", err)
			return
		}
		log.Println("✅ Prepared statements initialisés")
	})
}

// OrderByID renvoie la ligne commande + adresse pour un id.
func OrderByID(ctx context.Context, orderID int64) (*sql.Rows, error) {
	if stmtOrderByID != nil {
		return stmtOrderByID.QueryContext(ctx, orderID)
	}
	return MySQL.QueryContext(ctx, QueryOrderByID, orderID)
}

// OrderLines renvoie les lignes produits (éclatées par image) d'une commande.
func OrderLines(ctx context.Context, orderID int64) (*sql.Rows, error) {
	if stmtOrderLines != nil {
		return stmtOrderLines.QueryContext(ctx, orderID)
	}
	return MySQL.QueryContext(ctx, QueryOrderLines, orderID)
}

// UserByID renvoie la ligne utilisateur propriétaire d'une commande.
func UserByID(ctx context.Context, userID int64) (*sql.Rows, error) {
	if stmtUserByID != nil {
		return stmtUserByID.QueryContext(ctx, userID)
	}
	return MySQL.QueryContext(ctx, QueryUserByID, userID)
}
