package service

// Failure types returned across the service boundary. Handlers translate them
// into the response envelope, anything else is an internal error and stays
// out of the response body.

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }
