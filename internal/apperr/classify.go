package apperr

import (
	"errors"
	"net/http"
)

// Kind discriminates the three shapes a failure can take.
type Kind int

const (
	// KindUnclassified is any failure without a usable status code. It always maps to 500.
	KindUnclassified Kind = iota
	// KindExternal is a failure that exposes a status code but was not built with New.
	KindExternal
	// KindStructured is a *Error.
	KindStructured
)

// String returns the log label for k.
func (k Kind) String() string {
	switch k {
	case KindStructured:
		return "structured"
	case KindExternal:
		return "external"
	default:
		return "unclassified"
	}
}

// DefaultMessage is used for unclassified faults that carry no message.
const DefaultMessage = "An internal server error occurred"

// StatusCoder is implemented by errors from dependencies that know their HTTP status.
type StatusCoder interface {
	StatusCode() int
}

// Namer is optionally implemented by status-carrying errors to supply a symbolic name.
type Namer interface {
	Name() string
}

// Classified is the normalised form of a failure.
type Classified struct {
	Kind       Kind
	StatusCode int
	Name       string
	Message    string
	Err        error
}

// Classify reduces err to a Classified value. The order of checks mirrors response
// precedence: structured errors first, then status-carrying errors, then everything else.
// A status code outside 400-599 is replaced by 500 on a structured error and
// ignored on an external error.
func Classify(err error) Classified {
	if e, ok := As(err); ok {
		c := Classified{
			Kind:       KindStructured,
			StatusCode: e.StatusCode(),
			Name:       e.Name(),
			Message:    e.Message(),
			Err:        err,
		}
		if !IsErrorStatus(c.StatusCode) {
			c.StatusCode = http.StatusInternalServerError
			c.Name = http.StatusText(http.StatusInternalServerError)
		}
		if c.Message == "" {
			c.Message = DefaultMessage
		}
		return c
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		if code := sc.StatusCode(); IsErrorStatus(code) {
			return Classified{
				Kind:       KindExternal,
				StatusCode: code,
				Name:       externalName(err, code),
				Message:    err.Error(),
				Err:        err,
			}
		}
	}

	message := DefaultMessage
	if err != nil && err.Error() != "" {
		message = err.Error()
	}
	return Classified{
		Kind:       KindUnclassified,
		StatusCode: http.StatusInternalServerError,
		Name:       http.StatusText(http.StatusInternalServerError),
		Message:    message,
		Err:        err,
	}
}

func externalName(err error, code int) string {
	var n Namer
	if errors.As(err, &n) && n.Name() != "" {
		return n.Name()
	}
	if text := http.StatusText(code); text != "" {
		return text
	}
	return "Error"
}
