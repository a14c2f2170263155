package errors

// Kind is the broad class of a failure as reported to API clients.
type Kind string

const (
	KindNone         Kind = ""
	KindClient       Kind = "client"
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindUnavailable  Kind = "unavailable"
	KindExecution    Kind = "execution"
)

// Kind maps a code onto its failure class. Unlisted codes are execution
// failures.
func (c ErrorCode) Kind() Kind {
	switch c {
	case ErrInvalidArgument, ErrUnknownAction:
		return KindClient
	case ErrResourceNotFound:
		return KindNotFound
	case ErrUnauthorized:
		return KindUnauthorized
	case ErrCapabilityUnavailable, ErrNotImplemented:
		return KindUnavailable
	default:
		return KindExecution
	}
}

// KindOf classifies err by the outermost code in its chain.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}

	return CodeOf(err).Kind()
}
