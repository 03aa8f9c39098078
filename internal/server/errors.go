package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	artistdomain "github.com/smallbiznis/royalti/internal/artist/domain"
	authdomain "github.com/smallbiznis/royalti/internal/auth/domain"
	"github.com/smallbiznis/royalti/internal/authorization"
	catalogdomain "github.com/smallbiznis/royalti/internal/catalog/domain"
	dashboarddomain "github.com/smallbiznis/royalti/internal/dashboard/domain"
	"github.com/smallbiznis/royalti/internal/royalty"
	songdomain "github.com/smallbiznis/royalti/internal/song/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

const persistenceFailureMessage = "the song could not be saved, please try again"

// fieldErrors maps validation sentinels to the request field they reject.
var fieldErrors = []struct {
	err     error
	field   string
	message string
}{
	{royalty.ErrUnbalancedLedger, "participants", "participant shares and the distributor share must total 100%"},
	{royalty.ErrEmptyLedger, "participants", "add at least one participant"},
	{royalty.ErrOutOfRange, "participants", "share is outside the allowed range"},
	{royalty.ErrDuplicateParticipant, "participants", "artist already participates in this song"},
	{royalty.ErrInvalidSubject, "participants", "participant artist is required"},
	{royalty.ErrInvalidRole, "participants", "unknown participant role"},
	{royalty.ErrInvalidDistributor, "distributor_percentage", "distributor share is outside the allowed range"},
	{royalty.ErrInvalidAmount, "revenue_cents", "amount must not be negative"},
	{royalty.ErrNotFound, "participants", "participant not found"},

	{songdomain.ErrInvalidTitle, "title", "title is required and must be at most 200 characters"},
	{songdomain.ErrInvalidGenre, "genre", "unknown genre"},
	{songdomain.ErrInvalidDuration, "duration_seconds", "duration must be positive"},
	{songdomain.ErrInvalidReleaseDate, "release_date", "release date must use YYYY-MM-DD"},
	{songdomain.ErrInvalidAudioURL, "audio_url", "audio url must be http or https"},
	{songdomain.ErrInvalidArtistID, "artist_id", "invalid artist id"},
	{songdomain.ErrArtistNotFound, "artist_id", "artist not found"},
	{songdomain.ErrInvalidStatus, "status", "unknown status"},
	{songdomain.ErrInvalidPerformance, "performance", "streams and revenue must not be negative"},

	{artistdomain.ErrInvalidName, "name", "name is required"},
	{artistdomain.ErrInvalidStageName, "stage_name", "stage name is required"},
	{artistdomain.ErrInvalidEmail, "email", "invalid email"},
	{artistdomain.ErrInvalidURL, "url", "invalid url"},
	{artistdomain.ErrInvalidBirthDate, "birth_date", "invalid birth date"},
	{artistdomain.ErrInvalidTaxID, "tax_id", "invalid tax id"},

	{authdomain.ErrInvalidEmail, "email", "invalid email"},
	{authdomain.ErrWeakPassword, "password", "password must be at least 8 characters"},
	{authdomain.ErrInvalidUsername, "username", "username must be 3 to 32 lowercase letters, digits, dots or underscores"},
	{authdomain.ErrInvalidRole, "role", "unknown role"},
	{authdomain.ErrInvalidURL, "url", "invalid url"},

	{catalogdomain.ErrInvalidArtistRef, "spotify_url", "invalid spotify artist link"},
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	// Checked before the ledger codes: both wrap a cause that would otherwise
	// read as a client error.
	switch {
	case errors.Is(err, songdomain.ErrPersistenceFailure):
		return http.StatusInternalServerError, errorPayload{
			Type:    "persistence_failure",
			Message: persistenceFailureMessage,
		}
	case errors.Is(err, songdomain.ErrInconsistentLedger):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr, ok := fieldValidationError(err); ok {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  []ValidationError{vErr},
		}
	}

	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{Field: "request", Code: "invalid_request", Message: "invalid request"},
			},
		}
	case isUnauthorizedError(err):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isForbiddenError(err):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, authdomain.ErrUserExists),
		errors.Is(err, authdomain.ErrUsernameTaken),
		errors.Is(err, artistdomain.ErrArtistInUse):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, catalogdomain.ErrUpstream):
		return http.StatusBadGateway, errorPayload{
			Type:    "upstream_error",
			Message: "the catalog service did not answer, please try again",
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, catalogdomain.ErrNotConfigured),
		errors.Is(err, songdomain.ErrStatementUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// fieldValidationError builds the field error for a known validation
// sentinel. Participant errors carry the index of the offending entry.
func fieldValidationError(err error) (ValidationError, bool) {
	for _, fe := range fieldErrors {
		if !errors.Is(err, fe.err) {
			continue
		}
		field := fe.field
		var pErr *songdomain.ParticipantError
		if errors.As(err, &pErr) {
			field = pErr.Path()
		}
		return ValidationError{
			Field:   field,
			Code:    fe.err.Error(),
			Message: fe.message,
		}, true
	}
	return ValidationError{}, false
}

// classifyErrorForLog returns the payload type and code logged for a failed request.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	if len(payload.Errors) > 0 {
		return payload.Type, payload.Errors[0].Code
	}
	return payload.Type, payload.Type
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isUnauthorizedError(err error) bool {
	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrSessionRevoked),
		errors.Is(err, authdomain.ErrUnauthenticated),
		errors.Is(err, artistdomain.ErrUnauthenticated),
		errors.Is(err, songdomain.ErrUnauthenticated),
		errors.Is(err, dashboarddomain.ErrUnauthenticated),
		errors.Is(err, authorization.ErrInvalidActor):
		return true
	default:
		return false
	}
}

func isForbiddenError(err error) bool {
	switch {
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authdomain.ErrForbidden),
		errors.Is(err, songdomain.ErrForbidden),
		errors.Is(err, dashboarddomain.ErrForbidden),
		errors.Is(err, authorization.ErrForbidden):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, songdomain.ErrNotFound),
		errors.Is(err, songdomain.ErrInvalidID),
		errors.Is(err, artistdomain.ErrNotFound),
		errors.Is(err, artistdomain.ErrInvalidID),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, catalogdomain.ErrArtistNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, artistdomain.ErrArtistInUse):
		return "artist participates in at least one song"
	case errors.Is(err, authdomain.ErrUserExists):
		return "an account with this email already exists"
	case errors.Is(err, authdomain.ErrUsernameTaken):
		return "username is taken"
	default:
		return "conflict"
	}
}
