package services

// ErrorKind classifies service failures so controllers can pick the right
// HTTP status without string matching.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindForbidden
	KindConflict
	KindValidation
)

// Error is the service-layer error. Not-found, forbidden, conflict and
// validation outcomes are normal return variants here, not panics or
// sentinel strings. ExistingID carries the id of the already-existing
// record on duplicate conflicts.
type Error struct {
	Kind       ErrorKind
	Message    string
	ExistingID uint
}

func (e *Error) Error() string {
	return e.Message
}

func NotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func ForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func ConflictError(message string, existingID uint) *Error {
	return &Error{Kind: KindConflict, Message: message, ExistingID: existingID}
}

func ValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}
