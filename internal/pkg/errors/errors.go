package errors

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid")
	ErrInternal = errors.New("internal")
	// ErrProvider covers embedding/generation provider timeouts and rejections
	// after local retries are exhausted.
	ErrProvider = errors.New("provider failure")
	// ErrStorage covers select/upsert failures, including an upsert whose
	// confirmed row count does not match the batch.
	ErrStorage = errors.New("storage failure")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsProvider(err error) bool {
	return errors.Is(err, ErrProvider)
}
