package auth

import "time"

// SignInRequest for POST /admin/signin
type SignInRequest struct {
	ID       string `json:"id" validate:"required,min=1,max=64"`
	Password string `json:"password" validate:"required,min=1,max=128"`
}

// AdminResponse represents an admin in API responses
type AdminResponse struct {
	ID          string     `json:"id"`
	LoginID     string     `json:"login_id"`
	Name        string     `json:"name"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// AdminResponseFromEntity converts entity to response DTO
func AdminResponseFromEntity(a *Admin) *AdminResponse {
	return &AdminResponse{
		ID:          a.ID.String(),
		LoginID:     a.LoginID,
		Name:        a.Name,
		LastLoginAt: a.LastLoginAt,
	}
}
