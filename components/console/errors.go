package console

import (
	"errors"
	"net/http"

	"github.com/goliatone/go-admin-console/components/otp"
)

var (
	// ErrUnknownScreen is returned for a screen name no list is registered under.
	ErrUnknownScreen = errors.New("console: unknown screen")
	// ErrUnknownFixture is returned when validating a document that is not a fixture.
	ErrUnknownFixture = errors.New("console: unknown fixture document")
	// ErrInvalidRequest wraps validation failures of inbound requests.
	ErrInvalidRequest = errors.New("console: invalid request")
	// ErrProductNotFound is returned when no product has the requested id.
	ErrProductNotFound = errors.New("console: product not found")
	// ErrDuplicateSKU is returned when a product change would reuse another product's SKU.
	ErrDuplicateSKU = errors.New("console: duplicate sku")

	errMissingAuthFlow = errors.New("console: auth flow not configured")
)

// HTTPStatus maps console and otp errors onto response codes.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUnknownScreen),
		errors.Is(err, ErrProductNotFound),
		errors.Is(err, otp.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, otp.ErrUnknownPurpose):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicateSKU),
		errors.Is(err, otp.ErrIncompleteCode),
		errors.Is(err, otp.ErrNotSubmittable),
		errors.Is(err, otp.ErrAlreadyVerified),
		errors.Is(err, otp.ErrCooldownActive),
		errors.Is(err, otp.ErrSessionClosed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
