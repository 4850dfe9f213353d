package dto

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserView is the redacted identity returned by auth endpoints. Store is
// null for admin accounts.
type UserView struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Role     string  `json:"role"`
	FullName string  `json:"fullName"`
	Store    *string `json:"store"`
}

// LoginResponse is the login success shape.
type LoginResponse struct {
	Success bool     `json:"success"`
	Token   string   `json:"token"`
	User    UserView `json:"user"`
}

// VerifyResponse is the verify success shape.
type VerifyResponse struct {
	Valid bool     `json:"valid"`
	User  UserView `json:"user"`
}

// ChangePasswordRequest payload for rotating the caller's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ProfileResponse extends the user view with store catalog data for
// store-scoped accounts.
type ProfileResponse struct {
	UserView
	StoreName string `json:"storeName,omitempty"`
	Region    string `json:"region,omitempty"`
}
