package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mind-engage/learnportal/internal/content"
	"github.com/mind-engage/learnportal/internal/gift"
	"github.com/mind-engage/learnportal/internal/quiz"
	"github.com/mind-engage/learnportal/internal/shop"
	"github.com/mind-engage/learnportal/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads a JSON body into v and validates its struct tags.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadJSON
	}
	return validate.Struct(v)
}

var errBadJSON = errors.New("bad json")

// fail maps domain errors to HTTP statuses.
func fail(w http.ResponseWriter, err error) {
	var (
		verrs validator.ValidationErrors
		gerr  *gift.ValidationError
	)
	switch {
	case errors.Is(err, content.ErrNotFound), errors.Is(err, quiz.ErrAttemptNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, gift.ErrNoQuestions):
		http.Error(w, "no valid questions found in file", http.StatusUnprocessableEntity)
	case errors.As(err, &verrs):
		http.Error(w, validationMessage(verrs), http.StatusBadRequest)
	case errors.As(err, &gerr),
		errors.Is(err, errBadJSON),
		errors.Is(err, content.ErrInvalid),
		errors.Is(err, storage.ErrBadKey),
		errors.Is(err, shop.ErrEmptyCart):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, quiz.ErrNotOwner):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, content.ErrOutOfStock), errors.Is(err, content.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Printf("internal error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// optInt parses an optional integer form value.
func optInt(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, content.ErrInvalid
	}
	return &n, nil
}
