package domain

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordUnavailable signals a stored user whose password hash is missing
// or unreadable. It is a data-integrity fault, not a credential failure.
var ErrPasswordUnavailable = errors.New("user record has no usable password hash")

// MaxPasswordBytes is the longest password bcrypt will hash.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned for passwords over MaxPasswordBytes.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// User is the domain model for accounts that report and work on issues.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicUser is the projection of a User that is safe to return to clients.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUser builds a user and hashes the plaintext password with the given bcrypt cost.
func NewUser(name, email, password string, cost int) (*User, error) {
	user := &User{Name: name, Email: email}
	if err := user.SetPassword(password, cost); err != nil {
		return nil, err
	}
	return user, nil
}

// SetPassword replaces the stored hash.
func (u *User) SetPassword(password string, cost int) error {
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashed)
	return nil
}

// ComparePassword reports whether plain matches the stored hash. A mismatch
// is (false, nil); a missing or corrupt hash returns ErrPasswordUnavailable.
func (u *User) ComparePassword(plain string) (bool, error) {
	if u.PasswordHash == "" {
		return false, ErrPasswordUnavailable
	}
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, errors.Join(ErrPasswordUnavailable, err)
	}
}

// Public strips the password hash.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
