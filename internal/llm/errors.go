package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorKind classifies a failed generation call
type ErrorKind string

// Error kinds. Quota, unavailable and empty responses are transient; the rest
// are permanent for the model that produced them.
const (
	KindQuota           ErrorKind = "quota"
	KindUnavailable     ErrorKind = "unavailable"
	KindEmptyResponse   ErrorKind = "empty_response"
	KindNotFound        ErrorKind = "not_found"
	KindPermission      ErrorKind = "permission_denied"
	KindInvalidArgument ErrorKind = "invalid_argument"
	KindUnknown         ErrorKind = "unknown"
)

// Transient reports whether another attempt may succeed after a delay
func (k ErrorKind) Transient() bool {
	switch k {
	case KindQuota, KindUnavailable, KindEmptyResponse:
		return true
	}
	return false
}

// ErrParse is matched by every error raised while decoding model output
var ErrParse = errors.New("model output could not be parsed")

// ServiceError is a failed call to the generation backend
type ServiceError struct {
	Model string
	Kind  ErrorKind
	Cause error
}

func (e *ServiceError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("generation failed (%s): %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("model %s failed (%s): %v", e.Model, e.Kind, e.Cause)
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// Transient reports whether the failure is worth a delayed retry on another model
func (e *ServiceError) Transient() bool {
	return e.Kind.Transient()
}

// ParseError carries the raw model output that failed to decode
type ParseError struct {
	Message string
	Raw     string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is makes every ParseError match ErrParse
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// KindOf returns the kind of a *ServiceError anywhere in err's chain, or
// classifies err directly when it is not one.
func KindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return Classify(err)
}

// Classify maps a backend error to an ErrorKind using its gRPC status code,
// its HTTP status code, or as a last resort its message.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if kind := classifyHTTP(apiErr.Code); kind != KindUnknown {
			return kind
		}
	}

	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		if kind := classifyCode(st.Code()); kind != KindUnknown {
			return kind
		}
	}

	return classifyMessage(err.Error())
}

func classifyCode(code codes.Code) ErrorKind {
	switch code {
	case codes.ResourceExhausted:
		return KindQuota
	case codes.Unavailable:
		return KindUnavailable
	case codes.NotFound:
		return KindNotFound
	case codes.PermissionDenied, codes.Unauthenticated:
		return KindPermission
	case codes.InvalidArgument, codes.FailedPrecondition:
		return KindInvalidArgument
	}
	return KindUnknown
}

func classifyHTTP(code int) ErrorKind {
	switch code {
	case http.StatusTooManyRequests:
		return KindQuota
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return KindUnavailable
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusForbidden, http.StatusUnauthorized:
		return KindPermission
	case http.StatusBadRequest:
		return KindInvalidArgument
	}
	return KindUnknown
}

func classifyMessage(msg string) ErrorKind {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "resource exhausted"), strings.Contains(msg, "quota"),
		strings.Contains(msg, "rate limit"), strings.Contains(msg, "429"):
		return KindQuota
	case strings.Contains(msg, "unavailable"), strings.Contains(msg, "503"),
		strings.Contains(msg, "overloaded"):
		return KindUnavailable
	case strings.Contains(msg, "not found"), strings.Contains(msg, "404"):
		return KindNotFound
	case strings.Contains(msg, "permission denied"), strings.Contains(msg, "403"):
		return KindPermission
	case strings.Contains(msg, "invalid argument"), strings.Contains(msg, "400"):
		return KindInvalidArgument
	}
	return KindUnknown
}
