package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors shared by the flows and clients.
var (
	ErrRepositoryNotFound = errors.New("repository not found or inaccessible")
	ErrNoContractFiles    = errors.New("no contract files discovered")
)

// DefaultAuthErrorMessage is shown when authentication fails without a reason.
const DefaultAuthErrorMessage = "An unknown error occurred during authentication"

// InputError reports malformed input detected before any network call.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewInputError creates an InputError.
func NewInputError(field, reason string) error {
	return &InputError{Field: field, Reason: reason}
}

// BackendError reports a transport failure or a non-success response from an HTTP API.
// StatusCode is zero when no response was received.
type BackendError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *BackendError) Error() string {
	switch {
	case e.StatusCode == 0 && e.Err != nil:
		return fmt.Sprintf("%s: request failed: %v", e.Op, e.Err)
	case e.Body != "":
		return fmt.Sprintf("%s: API request failed with status code %d and response: %s", e.Op, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("%s: API request failed with status code %d", e.Op, e.StatusCode)
	}
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// ResponseShapeError reports a response that decoded but did not carry the expected fields.
type ResponseShapeError struct {
	Op     string
	Reason string
}

func (e *ResponseShapeError) Error() string {
	return fmt.Sprintf("%s: invalid response format: %s", e.Op, e.Reason)
}

// UploadExpiredError reports that the backend no longer knows an extracted upload.
type UploadExpiredError struct {
	ExtractedPath string
}

func (e *UploadExpiredError) Error() string {
	return fmt.Sprintf("uploaded archive %q is no longer available", e.ExtractedPath)
}

// IsNotFound reports whether err is a backend response with status 404.
func IsNotFound(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && be.StatusCode == http.StatusNotFound
}

// UserMessage converts err into text suitable for showing to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		inputErr   *InputError
		expiredErr *UploadExpiredError
		shapeErr   *ResponseShapeError
		backendErr *BackendError
	)
	switch {
	case errors.As(err, &inputErr):
		return inputErr.Error()
	case errors.Is(err, ErrRepositoryNotFound):
		return "Repo not found or not a public repo with Rust files."
	case errors.Is(err, ErrNoContractFiles):
		return "No contract files were found in the provided source."
	case errors.As(err, &expiredErr):
		return "The uploaded archive has expired. Please upload it again."
	case errors.As(err, &shapeErr):
		return "The audit service returned an unexpected response."
	case errors.As(err, &backendErr):
		if backendErr.StatusCode == 0 {
			return "The audit service could not be reached."
		}
		return fmt.Sprintf("The audit service rejected the request (status %d).", backendErr.StatusCode)
	default:
		return err.Error()
	}
}

// CommandError represents an error that occurred during command execution.
type CommandError struct {
	ExitCode    int
	CommonError string
	Args        interface{}
}

// Error implements the error interface, returning the message from the common error.
func (e *CommandError) Error() string {
	return e.CommonError
}

// NewCommandError creates a new CommandError instance, encapsulating args and the error message.
func NewCommandError(args interface{}, err error, code int) *CommandError {
	return &CommandError{
		ExitCode:    code,
		CommonError: err.Error(),
		Args:        args,
	}
}
