package model

import "fmt"

// Role is the authorization tier of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole accepts "user" or "admin". An empty string yields RoleUser.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "", RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// User represents an account that owns cats.
type User struct {
	ID           string `json:"_id"`
	UserName     string `json:"user_name"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"-"` // Never expose in JSON
}

// UserOutput is the public projection of a user, used by every response
// that returns user data.
type UserOutput struct {
	ID       string `json:"_id"`
	UserName string `json:"user_name"`
	Email    string `json:"email"`
}

// Output returns the public projection of u.
func (u User) Output() UserOutput {
	return UserOutput{ID: u.ID, UserName: u.UserName, Email: u.Email}
}

// UserPatch lists the fields a user may change on their own record.
// PasswordHash is already hashed when it reaches the repository.
type UserPatch struct {
	UserName     *string
	Email        *string
	PasswordHash *string
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.UserName == nil && p.Email == nil && p.PasswordHash == nil
}

// Apply writes the patch onto u.
func (p UserPatch) Apply(u *User) {
	if p.UserName != nil {
		u.UserName = *p.UserName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
}
