package users

import (
	"regexp"
	"strings"
	"time"

	"github.com/nmesfin/mesob/internal/apperror"
)

// Role is the sole authorization input for every operation in the system.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
	RoleDriver   Role = "driver"
)

// ParseRole validates a role string, defaulting empty input to customer.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCustomer, RoleAdmin, RoleDriver:
		return Role(s), nil
	case "":
		return RoleCustomer, nil
	default:
		return "", apperror.Newf(apperror.KindValidation, "unknown role %q", s)
	}
}

// User is an account record. PasswordHash never leaves the package boundary
// in serialized form.
type User struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	ProfilePic   string    `json:"profile_pic,omitempty" bson:"profile_pic,omitempty"`
	Role         Role      `json:"role" bson:"role"`
	Address      string    `json:"address,omitempty" bson:"address,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>?`)

// SanitizeName strips HTML tags from a display name before storage.
func SanitizeName(name string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(name, ""))
}
