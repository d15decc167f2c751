package ledger

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Business rejections wrap one of these with a subject,
// e.g. fmt.Errorf("%w: gear", ErrNotFound); callers test with errors.Is and
// map them to transport responses. Anything not matching is an infrastructure
// failure and safe to retry.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid argument")
)

func notFound(subject string) error { return fmt.Errorf("%w: %s", ErrNotFound, subject) }
func conflict(subject string) error { return fmt.Errorf("%w: %s", ErrConflict, subject) }
func invalid(subject string) error  { return fmt.Errorf("%w: %s", ErrInvalid, subject) }
