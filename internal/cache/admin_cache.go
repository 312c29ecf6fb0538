package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"grocery_back_end/internal/database"
	"grocery_back_end/internal/models"
)

// AdminCacheTTL borne la durée de validité d'une identité admin en cache.
// Évite de rejouer la jointure rôles/permissions à chaque requête admin.
const AdminCacheTTL = 15 * time.Minute

func adminKey(adminID int64) string {
	return "admin:" + strconv.FormatInt(adminID, 10)
}

// GetAdmin tente de lire une identité admin en cache. Toute erreur Redis est
// traitée comme un cache miss : l'appelant retombe sur MySQL.
func GetAdmin(ctx context.Context, adminID int64) (*models.AdminIdentity, bool) {
	if database.Redis == nil {
		return nil, false
	}

	raw, err := database.Redis.Get(ctx, adminKey(adminID)).Result()
	if err != nil {
		return nil, false
	}

	var admin models.AdminIdentity
	if err := json.Unmarshal([]byte(raw), &admin); err != nil {
		return nil, false
	}
	return &admin, true
}

// SetAdmin met une identité admin en cache, en best-effort.
func SetAdmin(ctx context.Context, admin *models.AdminIdentity) {
	if database.Redis == nil {
		return
	}

	raw, err := json.Marshal(admin)
	if err != nil {
		return
	}
	database.Redis.Set(ctx, adminKey(admin.ID), raw, AdminCacheTTL)
}

// InvalidateAdmin purge l'identité d'un admin, par exemple après un
// changement de rôle.
func InvalidateAdmin(ctx context.Context, adminID int64) {
	if database.Redis == nil {
		return
	}
	database.Redis.Del(ctx, adminKey(adminID))
}
