// Package order regroupe les handlers du module commande : création
// transactionnelle, lectures recomposées, transition de statut et
// réconciliation des lignes produits.
package order

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// queryTimeout borne chaque requête vers MySQL. Le contexte part de la
// requête HTTP : une annulation côté client interrompt la transaction.
const queryTimeout = 10 * time.Second

func withTimeout(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), queryTimeout)
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// nullIfEmpty transforme une chaîne vide en NULL SQL.
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// nullIfZero transforme un id absent (0) en NULL SQL, pour les clés
// étrangères optionnelles.
func nullIfZero(id int64) interface{} {
	if id == 0 {
		return nil
	}
	return id
}

func nullableString(v sql.NullString) interface{} {
	if !v.Valid {
		return nil
	}
	return v.String
}
