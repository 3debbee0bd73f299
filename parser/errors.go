package parser

import "github.com/cockroachdb/errors"

var (
	// ErrStructural marks a document that lacks a root element or a required
	// element or attribute.
	ErrStructural = errors.New("malformed xUnit results")

	// ErrFormat marks a numeric attribute that is present but not a number.
	ErrFormat = errors.New("invalid number in xUnit results")
)

var errNotDecimal = errors.New("not a decimal number")

func structuralf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrStructural)
}

func formatf(cause error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(cause, format, args...), ErrFormat)
}
