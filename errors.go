package membergate

import "errors"

var (
	// ErrCredentialMismatch is returned by Signup when the password and its
	// confirmation differ.
	ErrCredentialMismatch = errors.New("password confirmation does not match")
	// ErrDuplicateAccount is returned by Signup when the account already has
	// a member record.
	ErrDuplicateAccount = errors.New("account already exists")
	// ErrInvalidCredentials is returned by Signin for an unknown account or
	// a wrong password; the two cases are intentionally indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked is returned by Signin while the account is inside its
	// lock window, regardless of password correctness.
	ErrAccountLocked = errors.New("account locked")
	// ErrTokenInvalid is returned by Authenticate for a bad signature,
	// structural corruption, a superseded or timed-out token, or an unknown
	// subject.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrInternal wraps hashing and store failures that are not an expected
	// outcome of the operation.
	ErrInternal = errors.New("internal failure")
	// ErrEngineNotReady is returned when an Engine is used before Build
	// wired its dependencies.
	ErrEngineNotReady = errors.New("engine not initialized")
)
