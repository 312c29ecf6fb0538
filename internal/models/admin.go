package models

// Permission est une permission nommée rattachée à une section du back-office.
type Permission struct {
	Section string `json:"section"`
	Name    string `json:"name"`
}

// AdminIdentity est l'identité résolue d'un admin : profil + rôle + la liste
// à plat de ses permissions. C'est cette structure qui est mise en cache.
type AdminIdentity struct {
	ID          int64        `json:"id"`
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	Email       string       `json:"email"`
	RoleName    string       `json:"role_name"`
	Permissions []Permission `json:"permissions"`
}

// HasPermission vérifie qu'une section figure dans les permissions de l'admin.
func (a *AdminIdentity) HasPermission(section string) bool {
	for _, p := range a.Permissions {
		if p.Section == section {
			return true
		}
	}
	return false
}
