package models

import "strings"

// User is a registered account. Password holds an argon2id hash.
type User struct {
	Name     string `json:"name" yaml:"name"`
	Email    string `json:"email" yaml:"email"`
	Password string `json:"password" yaml:"-"`
}

// SameEmail compares emails case-insensitively
func (u User) SameEmail(email string) bool {
	return strings.EqualFold(strings.TrimSpace(u.Email), strings.TrimSpace(email))
}
