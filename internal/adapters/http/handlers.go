package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"itgportal/internal/adapters/storage"
	"itgportal/internal/application/orchestrators"
	"itgportal/internal/application/projections"
	"itgportal/internal/domain/attendance"
	"itgportal/internal/domain/availability"
	"itgportal/internal/domain/civildate"
	"itgportal/internal/domain/client"
	"itgportal/internal/domain/coach"
	"itgportal/internal/domain/period"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// validate checks request bodies before they reach an orchestrator.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("civildate", func(fl validator.FieldLevel) bool {
		return civildate.Validate(fl.Field().String()) == nil
	})
	return v
}

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// errBadBody wraps JSON decode failures so they map to 400.
var errBadBody = errors.New("request body must be valid JSON")

// badRequestErrors are errors caused by caller input.
var badRequestErrors = []error{
	errBadBody,
	civildate.ErrInvalidDateFormat,
	civildate.ErrInvalidRange,
	availability.ErrInvalidStatus,
	availability.ErrReasonTooLong,
	availability.ErrEmptyCoachID,
	attendance.ErrEmptyClientID,
	attendance.ErrNotesTooLong,
	coach.ErrEmptyName,
	coach.ErrNameTooLong,
	coach.ErrInvalidEmail,
	client.ErrEmptyName,
	client.ErrNameTooLong,
	client.ErrInvalidProgram,
	client.ErrInvalidStatus,
	client.ErrNotGrace,
	period.ErrUnknownPolicy,
	orchestrators.ErrRangeTooLong,
	orchestrators.ErrEmptyBatch,
	projections.ErrInvalidYear,
	projections.ErrWindowTooLong,
}

// errorResponse is the body of every non-2xx JSON reply.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response_encode_failed", "error", err)
	}
}

// writeError maps an error to 400, 404 or 500. Only caller errors echo their message.
func writeError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request", Fields: fields})
		return
	}
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
	}
	internalError(w, err)
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

// decodeAndValidate decodes JSON from the request body, rejecting unknown fields,
// then runs struct validation.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return validate.Struct(v)
}

// queryYear reads ?year=, defaulting to the current year.
func queryYear(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return timeNow().Year(), nil
	}
	y, err := strconv.Atoi(raw)
	if err != nil {
		return 0, projections.ErrInvalidYear
	}
	return y, nil
}

