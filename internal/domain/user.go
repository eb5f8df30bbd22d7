package domain

import (
	"context"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

func IsValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	default:
		return false
	}
}

type User struct {
	ID           int       `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:50;not null;uniqueIndex"`
	Email        string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	FullName     string    `json:"full_name" gorm:"size:100"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         Role      `json:"role" gorm:"size:20;not null;default:user"`
	IsActive     bool      `json:"is_active" gorm:"not null"`
	Bio          string    `json:"bio" gorm:"size:500"`
	Age          *int      `json:"age,omitempty"`
	Addresses    []Address `json:"addresses,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

func (u *User) IsStaff() bool { return u.HasRole(RoleAdmin, RoleModerator) }

// Normalize lower-cases login identifiers and trims free text.
func (u *User) Normalize() {
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.FullName = strings.TrimSpace(u.FullName)
	u.Bio = strings.TrimSpace(u.Bio)
	if u.Role == "" {
		u.Role = RoleUser
	}
}

type Address struct {
	ID        int       `json:"id" gorm:"primaryKey"`
	UserID    int       `json:"user_id" gorm:"not null;index"`
	Street    string    `json:"street" gorm:"size:200;not null"`
	City      string    `json:"city" gorm:"size:100;not null"`
	State     string    `json:"state" gorm:"size:50;not null"`
	ZipCode   string    `json:"zip_code" gorm:"size:10;not null"`
	Country   string    `json:"country" gorm:"size:100;not null"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

// UserResponse is the public view of a user. The password hash never leaves
// the service.
type UserResponse struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type UserProfileResponse struct {
	UserResponse
	Bio       string    `json:"bio"`
	Age       *int      `json:"age,omitempty"`
	Addresses []Address `json:"addresses"`
}

func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func NewUserProfileResponse(u *User) UserProfileResponse {
	addresses := u.Addresses
	if addresses == nil {
		addresses = []Address{}
	}
	return UserProfileResponse{
		UserResponse: NewUserResponse(u),
		Bio:          u.Bio,
		Age:          u.Age,
		Addresses:    addresses,
	}
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	GetUserByID(ctx context.Context, id int) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, id int, updates map[string]interface{}) (*User, error)
	AddAddress(ctx context.Context, userID int, address *Address, setDefault bool) (*Address, error)
	ListAddresses(ctx context.Context, userID int) ([]Address, error)
}
