package authoring

import "fmt"

type Reason int

const (
	MissingField Reason = iota + 1
)

// ValidationError is returned by Submit if the form is incomplete. It leaves the form unchanged.
type ValidationError struct {
	Field  string // "title", "slug" or "content"
	Reason Reason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s is missing", e.Field)
}

// Message returns a human-readable message.
func (e *ValidationError) Message() string {
	switch e.Field {
	case "title":
		return "Please enter a title."
	case "slug":
		return "Please enter a slug which contains letters or digits."
	case "content":
		return "Please enter some content."
	default:
		return fmt.Sprintf("Please fill in the %s.", e.Field)
	}
}
