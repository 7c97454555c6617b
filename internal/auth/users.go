// Package auth provides the mock user directory and session tokens.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"calorina/internal/shared"
)

// Admin sign-up credentials: this exact email and name pair is granted the
// admin dashboard.
const (
	adminEmail = "admin@calorina.com"
	adminName  = "admin123"
)

// ErrInvalidCredentials is returned when sign-in finds no matching user.
var ErrInvalidCredentials = errors.New("auth: no user with that email and phone")

// User is an account in the directory.
type User struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	IsAdmin   bool   `json:"isAdmin"`
	IsNewUser bool   `json:"isNewUser,omitempty"`
}

// SignUpRequest is the onboarding form. Phone is joined to CountryCode.
type SignUpRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	CountryCode string `json:"countryCode"`
	Phone       string `json:"phone"`
}

// DefaultUsers are the demo accounts present at startup.
var DefaultUsers = []User{
	{Name: "Alice", Email: "alice@example.com", Phone: "+15551234567"},
	{Name: "Bob", Email: "bob@example.com", Phone: "+15557654321"},
}

// Directory is an in-memory user list.
type Directory struct {
	mu    sync.RWMutex
	users []User
}

// NewDirectory creates a Directory holding a copy of users.
func NewDirectory(users []User) *Directory {
	return &Directory{users: append([]User(nil), users...)}
}

// SignUp registers a user. Registering an email that already exists returns
// the new profile without adding a duplicate.
func (d *Directory) SignUp(req SignUpRequest) (User, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	phone := strings.TrimSpace(req.Phone)
	switch {
	case name == "":
		return User{}, fmt.Errorf("%w: please enter your name", shared.ErrInvalidInput)
	case email == "":
		return User{}, fmt.Errorf("%w: please enter your email", shared.ErrInvalidInput)
	case phone == "":
		return User{}, fmt.Errorf("%w: please enter your phone number", shared.ErrInvalidInput)
	}

	u := User{
		Name:      name,
		Email:     email,
		Phone:     strings.TrimSpace(req.CountryCode) + phone,
		IsAdmin:   strings.EqualFold(email, adminEmail) && name == adminName,
		IsNewUser: true,
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, existing := range d.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return u, nil
		}
	}
	stored := u
	stored.IsNewUser = false
	d.users = append(d.users, stored)
	return u, nil
}

// SignIn finds the user by case-insensitive email and exact phone.
func (d *Directory) SignIn(email, phone string) (User, error) {
	email, phone = strings.TrimSpace(email), strings.TrimSpace(phone)
	if email == "" || phone == "" {
		return User{}, ErrInvalidCredentials
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if strings.EqualFold(u.Email, email) && u.Phone == phone {
			return u, nil
		}
	}
	return User{}, ErrInvalidCredentials
}

// Users lists every registered user.
func (d *Directory) Users() []User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]User(nil), d.users...)
}
