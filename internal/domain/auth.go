package domain

import "time"

// ============================================================
// Users & authentication
// ============================================================

// Roles. The admin shell is gated on RoleAdmin; other roles exist for
// future client-facing surfaces.
const (
	RoleAdmin        = "admin"
	RoleProfessional = "professional"
	RoleReception    = "reception"
)

// User is a staff account. The password hash never leaves the store layer.
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Role        string     `json:"role"`
	Active      bool       `json:"active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// UserInput holds the editable fields of a user account.
type UserInput struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Password string `json:"password,omitempty"` // only on create / reset
	Active   *bool  `json:"active,omitempty"`
}

// Credential is the stored password material for a user.
type Credential struct {
	UserID       string `json:"user_id"`
	PasswordHash string `json:"password_hash"`
}

// RefreshToken is a stored (hashed) refresh token.
type RefreshToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"token_hash"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRequest carries the sign-in credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued session tokens.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         *User  `json:"user"`
}

// RefreshRequest carries a refresh token to rotate.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest carries a password change for the current user.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
