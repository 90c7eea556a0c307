package domain

import "time"

// User types. Admin capabilities are granted through Permissions rather
// than a dedicated user type.
const (
	UserTypeUser    = "user"
	UserTypeCompany = "company"
)

// Profile holds the mutable identity fields of an AuthUser. CompanyName is
// populated only for company accounts.
type Profile struct {
	Name        string `bson:"name" json:"name"`
	Phone       string `bson:"phone,omitempty" json:"phone,omitempty"`
	CompanyName string `bson:"company_name,omitempty" json:"companyName,omitempty"`
	Department  string `bson:"department,omitempty" json:"department,omitempty"`
	IsActive    bool   `bson:"is_active" json:"isActive"`
}

// Permissions gates administrative operations.
type Permissions struct {
	CanViewAllUsers bool `bson:"can_view_all_users" json:"canViewAllUsers"`
}

// AuthUser is the login identity. RefreshToken holds the single active
// refresh token; issuing a new pair overwrites it, which is what invalidates
// a superseded token (there is no revocation list).
type AuthUser struct {
	ID           int64       `bson:"_id" json:"id"`
	Email        string      `bson:"email" json:"email"`
	PasswordHash string      `bson:"password_hash" json:"-"`
	UserType     string      `bson:"user_type" json:"userType"`
	Profile      Profile     `bson:"profile" json:"profile"`
	Permissions  Permissions `bson:"permissions" json:"permissions"`
	RefreshToken string      `bson:"refresh_token,omitempty" json:"-"`
	LastLogin    *time.Time  `bson:"last_login,omitempty" json:"lastLogin,omitempty"`
	CreatedAt    time.Time   `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time   `bson:"updated_at" json:"updatedAt"`
}
