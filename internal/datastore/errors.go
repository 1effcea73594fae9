package datastore

import "fmt"

// StoreError is the only error type the wire layer produces. A Status of zero
// means the request never got an HTTP response (transport failure).
type StoreError struct {
	Status  int
	Message string
}

func (e *StoreError) Error() string {
	if e.Status == 0 {
		return "datastore: " + e.Message
	}

	return fmt.Sprintf("datastore: %d: %s", e.Status, e.Message)
}

func transportError(err error) *StoreError {
	return &StoreError{Message: err.Error()}
}
