package aur

// StatusKind tags the active variant of a Status.
type StatusKind int

const (
	StatusIdle StatusKind = iota
	StatusLoading
	StatusSuccess
	StatusFailure
)

func (k StatusKind) String() string {
	switch k {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Status is the state of the current lookup. Payload is set only for
// StatusSuccess and Message only for StatusFailure.
type Status struct {
	Kind    StatusKind
	Payload *Response
	Message string
}

// Idle returns the status of a store with nothing searched.
func Idle() Status {
	return Status{Kind: StatusIdle}
}

// Loading returns the status of an in-flight lookup.
func Loading() Status {
	return Status{Kind: StatusLoading}
}

// Success returns a resolved status carrying the response.
func Success(payload *Response) Status {
	return Status{Kind: StatusSuccess, Payload: payload}
}

// Failure returns a resolved status carrying a human-readable message.
func Failure(message string) Status {
	return Status{Kind: StatusFailure, Message: message}
}

// Results returns the payload rows, or nil when the status is not a success.
func (s Status) Results() []PackageSummary {
	if s.Kind != StatusSuccess || s.Payload == nil {
		return nil
	}
	return s.Payload.Results
}

func (s Status) String() string {
	switch s.Kind {
	case StatusFailure:
		return "failure: " + s.Message
	default:
		return s.Kind.String()
	}
}
