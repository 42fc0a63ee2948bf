package auth

// login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// registration request payload. Organizers send full_name and business_name,
// everyone else first_name and last_name.
type RegisterRequest struct {
	Email        string `json:"email" validate:"required,email,max=255"`
	Password     string `json:"password" validate:"required,min=6,max=72"`
	Role         string `json:"role,omitempty" validate:"omitempty,oneof=user organizer"`
	FirstName    string `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName     string `json:"last_name,omitempty" validate:"omitempty,max=100"`
	FullName     string `json:"full_name,omitempty" validate:"omitempty,max=200"`
	BusinessName string `json:"business_name,omitempty" validate:"omitempty,max=200"`
}
