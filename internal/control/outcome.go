package control

import (
	"codeberg.org/mutker/hostctl/internal/errors"
)

// ErrorKind classifies a failed action.
type ErrorKind = errors.Kind

const (
	KindNone         = errors.KindNone
	KindClient       = errors.KindClient
	KindNotFound     = errors.KindNotFound
	KindUnauthorized = errors.KindUnauthorized
	KindUnavailable  = errors.KindUnavailable
	KindExecution    = errors.KindExecution
)

// Outcome is the normalized result of any control action. Field names the
// response key that carries Value; it is empty for actions without one.
type Outcome struct {
	OK    bool
	Field string
	Value any
	Error string
	Kind  ErrorKind
}

func Success(field string, value any) Outcome {
	return Outcome{OK: true, Field: field, Value: value}
}

func Failure(kind ErrorKind, msg string) Outcome {
	return Outcome{Kind: kind, Error: msg}
}

// FromError maps a coded domain error onto an Outcome.
func FromError(err error) Outcome {
	if err == nil {
		return Outcome{OK: true}
	}

	return Failure(errors.KindOf(err), err.Error())
}
