package routes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"doclinks/doclinks/controllers"
	"doclinks/doclinks/utils/jsonutils"
)

// handleJSON writes the handler's result as indented JSON. A failed handler
// that still returns an envelope gets the envelope with its error status;
// otherwise the error text is sent as plain text.
func handleJSON(handler func(r *http.Request) (any, int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, status, err := handler(r)
		if err != nil && res == nil {
			http.Error(w, err.Error(), status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, jsonutils.ToJSON(res))
	}
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// statusFor maps controller errors to HTTP statuses.
func statusFor(err error) int {
	if errors.Is(err, controllers.ErrMissingArgument) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
