package helpers

import "slices"

const AdminRole = "admin"

// AdminClaims is what middleware.AdminAuth stores in the gin context.
type AdminClaims struct {
	*CustomClaims
	UserID string   `json:"id"`
	Email  string   `json:"email,omitempty"`
	Roles  []string `json:"roles,omitempty"`
}

func NewAdminClaims(c *CustomClaims) *AdminClaims {
	return &AdminClaims{
		CustomClaims: c,
		UserID:       c.Subject,
		Email:        c.Email,
		Roles:        c.AppMetadata.Roles,
	}
}

func (ac *AdminClaims) IsAdmin() bool {
	return ac.HasRole(AdminRole)
}

func (ac *AdminClaims) HasRole(role string) bool {
	return slices.Contains(ac.Roles, role)
}
