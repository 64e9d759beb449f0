package account

import "errors"

var (
	ErrInvalidInput = errors.New("invalid registration input")
	ErrInvalidAuth  = errors.New("invalid credentials")
	ErrLoginTaken   = errors.New("login already taken")
	ErrNotFound     = errors.New("account not found")
)

// User is a registered account. The id doubles as the tenant identity for
// every record the user owns.
type User struct {
	ID           string
	Login        string
	PasswordHash string
}
