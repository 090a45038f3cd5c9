package types

import "github.com/gofiber/fiber/v2"

// DomainError is a typed rejection with a stable code. Handlers translate
// these into the response envelope; anything else becomes a 500.
type DomainError struct {
	Code    string
	Message string
	Status  int
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(code, message string, status int) *DomainError {
	return &DomainError{Code: code, Message: message, Status: status}
}

var (
	// ErrBraceletAlreadyBound: the tag belongs to a different user.
	ErrBraceletAlreadyBound = NewDomainError(
		"TAG_ALREADY_BOUND", "bracelet is already bound to another user", fiber.StatusConflict)

	// ErrUsernameTaken: web registration/profile update hit a duplicate username.
	ErrUsernameTaken = NewDomainError(
		"USERNAME_TAKEN", "username already exists", fiber.StatusConflict)

	// ErrAIGenerationFailed: explicit regenerate could not get an AI result.
	// The get path never surfaces this; it falls back silently instead.
	ErrAIGenerationFailed = NewDomainError(
		"AI_FAILED", "fortune generation failed, please retry", fiber.StatusServiceUnavailable)

	// ErrInvalidCredentials: wrong username/password on the web entry points.
	ErrInvalidCredentials = NewDomainError(
		"INVALID_CREDENTIALS", "invalid username or password", fiber.StatusBadRequest)

	// ErrTagNotFound: the tag id is not provisioned in the registry.
	ErrTagNotFound = NewDomainError(
		"TAG_NOT_FOUND", "bracelet does not exist", fiber.StatusBadRequest)

	// ErrTagNotBound: web login requires a tag already bound to the caller.
	ErrTagNotBound = NewDomainError(
		"TAG_NOT_BOUND", "bracelet is not bound to this user", fiber.StatusBadRequest)

	// ErrNotEntitled: the operation requires owning at least one bracelet.
	ErrNotEntitled = NewDomainError(
		"NOT_ENTITLED", "a bound bracelet is required", fiber.StatusForbidden)

	// ErrUnauthorized: login-code exchange or token verification failed.
	ErrUnauthorized = NewDomainError(
		"UNAUTHORIZED", "authentication failed", fiber.StatusUnauthorized)

	// ErrFortuneNotFound: the requested date has no recorded reading.
	ErrFortuneNotFound = NewDomainError(
		"FORTUNE_NOT_FOUND", "no fortune recorded for that date", fiber.StatusNotFound)
)

// ValidationError builds a 400 rejection for malformed input.
func ValidationError(message string) *DomainError {
	return NewDomainError("VALIDATION_ERROR", message, fiber.StatusBadRequest)
}
