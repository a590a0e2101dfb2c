package auth

import "errors"

var (
	// ErrInvalidCredentials is returned when the email/password pair does not match.
	// It deliberately does not distinguish an unknown email from a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountInactive is returned when a disabled account tries to authenticate
	// or when a token resolves to a disabled account.
	ErrAccountInactive = errors.New("user account is inactive")

	// ErrInvalidToken is returned when a bearer token is malformed, expired,
	// or carries a bad signature.
	ErrInvalidToken = errors.New("token is not valid")

	// ErrUserNotFound is returned when a referenced user no longer exists.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists is returned when registering or creating a user with an
	// email that is already taken.
	ErrEmailExists = errors.New("user already exists with this email")

	// ErrSelfDeletion is returned when an admin tries to delete their own account.
	ErrSelfDeletion = errors.New("cannot delete your own account")

	// ErrUnknownRole is returned when a user is assigned a role outside the
	// defined set.
	ErrUnknownRole = errors.New("unknown role")
)
