package codec

import "github.com/cockroachdb/errors"

// Sentinel errors raised by generated constructors and decoders. Callers can
// test for them with errors.Is.
var (
	// ErrNilArgument is returned by a generated constructor when a required
	// reference-typed field is nil.
	ErrNilArgument = errors.New("argument is nil")

	// ErrOutOfRange is returned by a generated constructor when a field value
	// violates its declared bounds, length limits or pattern.
	ErrOutOfRange = errors.New("value out of range")

	// ErrInvalidState is returned when encode or decode dispatch reaches a
	// branch the type model guarantees is unreachable, e.g. an unrecognized
	// tag of a closed family.
	ErrInvalidState = errors.New("invalid state")

	// ErrMissingField is returned when a required field is absent from the
	// wire.
	ErrMissingField = errors.New("missing field")
)

// NilArgument reports a nil value for the named required field.
func NilArgument(field string) error {
	return errors.Wrapf(ErrNilArgument, "field %q", field)
}

// OutOfRange reports a constraint violation for the named field.
func OutOfRange(field string) error {
	return errors.Wrapf(ErrOutOfRange, "field %q", field)
}

// InvalidState reports an unreachable dispatch branch.
func InvalidState(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidState, format, args...)
}

func missingField(field string) error {
	return errors.Wrapf(ErrMissingField, "field %q", field)
}
