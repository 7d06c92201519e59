package models

// DefaultRole is assigned to users registered without an explicit role
const DefaultRole = "usuario"

// User represents a document of the "usuarios" collection
type User struct {
	ID           ID      `bson:"_id,omitempty"`
	Username     string  `bson:"username"`
	PasswordHash string  `bson:"password"`
	Email        string  `bson:"email"`
	Name         string  `bson:"name"`
	Country      string  `bson:"country"`
	City         string  `bson:"city"`
	Company      *string `bson:"company"`
	Role         string  `bson:"rol"`
}

// UserResponse is the public representation of a user, it never carries the password hash
type UserResponse struct {
	ID       ID      `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Country  string  `json:"country"`
	City     string  `json:"city"`
	Company  *string `json:"company"`
	Role     string  `json:"role"`
}

// ToResponse projects the user to its public representation
func (u *User) ToResponse() UserResponse {
	role := u.Role
	if role == "" {
		role = DefaultRole
	}
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Name:     u.Name,
		Country:  u.Country,
		City:     u.City,
		Company:  u.Company,
		Role:     role,
	}
}

// CreateUserRequest represents a registration request
type CreateUserRequest struct {
	Username string  `json:"username" validate:"required"`
	Password string  `json:"password" validate:"required,max=72"`
	Email    string  `json:"email" validate:"required,email"`
	Name     string  `json:"name" validate:"required"`
	Country  string  `json:"country" validate:"required"`
	City     string  `json:"city" validate:"required"`
	Company  *string `json:"company,omitempty"`
	Role     string  `json:"role,omitempty"`
}

// UpdateUserRequest represents a partial user update, only the password can change
type UpdateUserRequest struct {
	Password *string `json:"password,omitempty" validate:"omitempty,min=6,max=72"`
}

// IsEmpty reports whether the request carries no fields
func (r *UpdateUserRequest) IsEmpty() bool {
	return r.Password == nil
}

// MessageResponse is a generic confirmation body
type MessageResponse struct {
	Message string `json:"message"`
}
