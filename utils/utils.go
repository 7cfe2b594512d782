package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"okrproject/errs"
	"okrproject/models"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New()
}

// DecodeAndValidate decodes the request body into a structure and validates it
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		HandleMessageResponse(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return err
	}
	if err := Validate.Struct(v); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			HandleMessageResponse(w, err.Error(), http.StatusBadRequest)
			return err
		}
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Namespace()] = e.Tag()
		}
		HandleValidationResponse(w, http.StatusBadRequest, errorMessages)
		return err
	}
	return nil
}

// ParseObjectID reads the path value name as an ObjectID. On failure it
// writes the 400 response itself.
func ParseObjectID(w http.ResponseWriter, r *http.Request, name, what string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(r.PathValue(name))
	if err != nil {
		HandleMessageResponse(w, fmt.Sprintf("Invalid %s ID format", what), http.StatusBadRequest)
		return primitive.NilObjectID, false
	}
	return id, true
}

// HandleMessageResponse writes a status code with a plain message
func HandleMessageResponse(w http.ResponseWriter, errorMessage string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	response := models.NewMessageResponse(statusCode, errorMessage)
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// HandleValidationResponse handles validation errors response for struct validation
func HandleValidationResponse(w http.ResponseWriter, statusCode int, validationErrors interface{}) {
	w.Header().Set("Content-Type", "application/json")
	response := models.NewValidationResponse(statusCode, validationErrors)
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// HandleDataResponse handles success responses with data
func HandleDataResponse(w http.ResponseWriter, message string, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	response := models.NewDataResponse(statusCode, message, data)
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	var ve *errs.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrUnauthorized), errors.Is(err, errs.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// HandleServiceError writes err with the status StatusFor picks. Internal
// errors are logged and their detail is not sent to the client.
func HandleServiceError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
		HandleMessageResponse(w, "Internal server error", status)
		return
	}

	var ve *errs.ValidationError
	if errors.As(err, &ve) && ve.Field != "" {
		HandleValidationResponse(w, status, map[string]string{ve.Field: ve.Message})
		return
	}
	HandleMessageResponse(w, err.Error(), status)
}

// HandleBatchResponse answers 200 when every item succeeded and 207 otherwise.
func HandleBatchResponse(w http.ResponseWriter, message string, result *models.BatchResult) {
	status := http.StatusOK
	if result.HasFailures() {
		status = http.StatusMultiStatus
		message = fmt.Sprintf("%s: %d succeeded, %d failed", message, len(result.Succeeded), len(result.Failed))
	}
	HandleDataResponse(w, message, result, status)
}
