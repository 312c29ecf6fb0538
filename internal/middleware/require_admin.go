package middleware

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"grocery_back_end/internal/cache"
	"grocery_back_end/internal/database"
	"grocery_back_end/internal/models"
)

const adminQuery = `SELECT
		admins.id, admins.first_name, admins.last_name, admins.email,
		roles.name AS role_name,
		permissions.section AS permission_section,
		permissions.name AS permission_name
	FROM admins
	JOIN roles ON admins.role_id = roles.id
	JOIN role_permissions ON roles.id = role_permissions.role_id
	JOIN permissions ON role_permissions.permission_id = permissions.id
	WHERE admins.id = ?`

// RequireAdmin vérifie le token d'un admin puis charge son rôle et ses
// permissions (jointure admins/roles/permissions, avec cache Redis).
// L'identité complète est posée dans le contexte sous "admin".
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "You are not logged in"})
			c.Abort()
			return
		}

		claims, err := parseToken(tokenString)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Forbidden access"})
			c.Abort()
			return
		}

		id, ok := claims["id"].(float64)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Forbidden access"})
			c.Abort()
			return
		}
		adminID := int64(id)

		admin, err := loadAdmin(c.Request.Context(), adminID)
		if err != nil {
			log.Printf("❌ Erreur chargement admin %d: %v", adminID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Erreur serveur"})
			c.Abort()
			return
		}
		if admin == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Admin not found. Please Login Again"})
			c.Abort()
			return
		}

		c.Set("admin", admin)
		c.Next()
	}
}

// RequirePermission refuse l'accès si l'admin posé par RequireAdmin ne porte
// aucune permission sur la section donnée.
func RequirePermission(section string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get("admin")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "You are not logged in"})
			c.Abort()
			return
		}

		admin, ok := v.(*models.AdminIdentity)
		if !ok || !admin.HasPermission(section) {
			log.Printf("🚫 Permission refusée: %s pour admin %v", section, v)
			c.JSON(http.StatusForbidden, gin.H{
				"success":             false,
				"error":               "Permission insuffisante",
				"required_permission": section,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// AdminFromContext rend l'identité posée par RequireAdmin.
func AdminFromContext(c *gin.Context) (*models.AdminIdentity, bool) {
	v, exists := c.Get("admin")
	if !exists {
		return nil, false
	}
	admin, ok := v.(*models.AdminIdentity)
	return admin, ok
}

func loadAdmin(ctx context.Context, adminID int64) (*models.AdminIdentity, error) {
	if admin, ok := cache.GetAdmin(ctx, adminID); ok {
		return admin, nil
	}

	rows, err := database.MySQL.QueryContext(ctx, adminQuery, adminID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admin *models.AdminIdentity
	for rows.Next() {
		var (
			id                              int64
			firstName, lastName, email      sql.NullString
			roleName, permSection, permName sql.NullString
		)
		if err := rows.Scan(&id, &firstName, &lastName, &email, &roleName, &permSection, &permName); err != nil {
			return nil, err
		}

		if admin == nil {
			admin = &models.AdminIdentity{
				ID:          id,
				FirstName:   firstName.String,
				LastName:    lastName.String,
				Email:       email.String,
				RoleName:    roleName.String,
				Permissions: []models.Permission{},
			}
		}
		admin.Permissions = append(admin.Permissions, models.Permission{
			Section: permSection.String,
			Name:    permName.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if admin != nil {
		cache.SetAdmin(ctx, admin)
	}
	return admin, nil
}
