package models

// UserResponse is the public view of a user; the password never appears here.
type UserResponse struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhotoURL string `json:"photoURL"`
}

// AuthResponse represents the response after successful registration or login
type AuthResponse struct {
	UserResponse
	Token string `json:"token"`
}
