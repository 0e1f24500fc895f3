package service

import "errors"

// Kind classifies domain errors so transports can pick a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindWindow
)

// Error is a domain error with a classification.
type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

// KindOf returns the Kind of the first domain error in err's chain.
// Errors outside the domain are internal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Domain Errors
var (
	ErrInvalidAssignmentKind = newError(KindValidation, "assignment kind must be class or room")
	ErrInvalidWindow         = newError(KindValidation, "assignment start must be before end")
	ErrInvalidVariantCount   = newError(KindValidation, "exam code count is out of range")
	ErrScoreExceedsMax       = newError(KindValidation, "question scores exceed the exam max score")
	ErrEmptyQuestionSet      = newError(KindValidation, "exam has no questions")
	ErrDuplicateQuestion     = newError(KindValidation, "question listed more than once")
	ErrUnknownQuestion       = newError(KindValidation, "question does not exist")

	ErrAlreadyAttempted = newError(KindConflict, "exam already attempted")
	ErrAlreadySubmitted = newError(KindConflict, "exam already submitted")
	ErrAssignmentExists = newError(KindConflict, "exam already assigned to this group")

	ErrAssignmentNotFound = newError(KindNotFound, "assignment not found")
	ErrExamNotFound       = newError(KindNotFound, "exam not found")
	ErrAttemptNotFound    = newError(KindNotFound, "attempt not found")
	ErrGroupNotFound      = newError(KindNotFound, "class or room not found")

	ErrNotYetOpen = newError(KindWindow, "exam is not open yet")
	ErrClosed     = newError(KindWindow, "exam is closed")
)
