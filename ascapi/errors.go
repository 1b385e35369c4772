package ascapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorObject is one entry of a JSON:API error response.
type ErrorObject struct {
	Status string `json:"status"`
	Code   string `json:"code"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// Error is returned for non 2xx responses.
type Error struct {
	StatusCode int
	Errors     []ErrorObject
	Body       string
}

func (e *Error) Error() string {
	if len(e.Errors) == 0 {
		if e.Body == "" {
			return fmt.Sprintf("HTTP %d", e.StatusCode)
		}
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
	}

	messages := make([]string, 0, len(e.Errors))
	for _, obj := range e.Errors {
		message := obj.Code
		if obj.Detail != "" {
			message = fmt.Sprintf("%s (%s)", obj.Code, obj.Detail)
		} else if obj.Title != "" {
			message = fmt.Sprintf("%s (%s)", obj.Code, obj.Title)
		}
		messages = append(messages, message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, strings.Join(messages, ", "))
}

// Temporary reports whether repeating the same request may succeed.
func (e *Error) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// IsNotFound ...
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func unwrapError(resp *http.Response) error {
	body := drainBody(resp.Body)

	apiErr := &Error{StatusCode: resp.StatusCode}
	var document struct {
		Errors []ErrorObject `json:"errors"`
	}
	if err := json.Unmarshal(body, &document); err == nil && len(document.Errors) > 0 {
		apiErr.Errors = document.Errors
	} else {
		apiErr.Body = string(body)
	}

	return apiErr
}
