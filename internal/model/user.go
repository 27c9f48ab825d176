package model

type UserRole string

const (
	Student UserRole = "student"
	Mentor  UserRole = "mentor"
	Manager UserRole = "manager"
)

// swagger:model User
type User struct {
	ID        int      `json:"id" validate:"required"`
	Username  string   `json:"username" validate:"required"`
	Email     string   `json:"email"`
	FullName  string   `json:"full_name"`
	Gender    string   `json:"gender,omitempty"`
	Batch     string   `json:"batch,omitempty"`
	Role      UserRole `json:"role" validate:"required"`
	IsActive  bool     `json:"is_active"`
	CreatedAt Time     `json:"created_at"`
}

// CanMentor reports whether the role sees mentor views. Managers inherit them.
func (u User) CanMentor() bool {
	return u.Role == Mentor || u.Role == Manager
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
	Batch    string `json:"batch" binding:"required"`
	Gender   string `json:"gender,omitempty"`
	Email    string `json:"email,omitempty"`
}

type AuthResponse struct {
	Envelope
	Token string `json:"token" validate:"required"`
	User  User   `json:"user"`
}
