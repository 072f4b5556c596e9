package errs

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

type NotFoundError struct {
	ErrorMessage
}

type ValidationError struct {
	ErrorMessage
}

// RemoteError is a logical failure reported by the remote data API
// (status "error"). Message is the server text, shown verbatim.
type RemoteError struct {
	ErrorMessage
	Action string
}

// ExternalServiceError wraps a transport failure talking to a remote service.
type ExternalServiceError struct {
	ErrorMessage
	Service   string
	Transient bool
	Err       error
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

type ConfirmationRequiredError struct {
	ErrorMessage
}

type ReadOnlyError struct {
	ErrorMessage
}

type BusyError struct {
	ErrorMessage
}

type ImageError struct {
	ErrorMessage
	Err error
}

func (e *ImageError) Unwrap() error { return e.Err }

type DatabaseError struct {
	ErrorMessage
	Operation string
	Err       error
}

func (e *DatabaseError) Unwrap() error { return e.Err }

type EncryptionError struct {
	ErrorMessage
	Err error
}

func (e *EncryptionError) Unwrap() error { return e.Err }

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewRemoteError(action, message string) *RemoteError {
	return &RemoteError{
		ErrorMessage: ErrorMessage{Message: message},
		Action:       action,
	}
}

func NewExternalServiceError(service string, transient bool, err error) *ExternalServiceError {
	msg := service + " unavailable"
	if err != nil {
		msg = service + ": " + err.Error()
	}
	return &ExternalServiceError{
		ErrorMessage: ErrorMessage{Message: msg},
		Service:      service,
		Transient:    transient,
		Err:          err,
	}
}

func NewConfirmationRequiredError(prompt string) *ConfirmationRequiredError {
	return &ConfirmationRequiredError{
		ErrorMessage: ErrorMessage{Message: prompt},
	}
}

func NewReadOnlyError() *ReadOnlyError {
	return &ReadOnlyError{
		ErrorMessage: ErrorMessage{Message: "read-only mode: no access key"},
	}
}

func NewBusyError() *BusyError {
	return &BusyError{
		ErrorMessage: ErrorMessage{Message: "another change is still being saved"},
	}
}

func NewImageError(message string, err error) *ImageError {
	return &ImageError{
		ErrorMessage: ErrorMessage{Message: message},
		Err:          err,
	}
}

func NewDatabaseError(operation string, err error) *DatabaseError {
	return &DatabaseError{
		ErrorMessage: ErrorMessage{Message: err.Error()},
		Operation:    operation,
		Err:          err,
	}
}

func NewEncryptionError(err error) *EncryptionError {
	return &EncryptionError{
		ErrorMessage: ErrorMessage{Message: err.Error()},
		Err:          err,
	}
}
