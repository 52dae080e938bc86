package row

// InvalidRowError marks a row whose data is inconsistent with the declared
// schema. It aborts only the affected row; the caller decides whether the
// job continues.
type InvalidRowError struct {
	message string
}

func (e *InvalidRowError) Error() string {
	return e.message
}

func NewInvalidRowError(message string) *InvalidRowError {
	return &InvalidRowError{message: message}
}
