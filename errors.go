package autocompare

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrConfiguration matches any *ConfigurationError with errors.Is
	ErrConfiguration = errors.New("autocompare: invalid configuration")
	// ErrUnsupportedType matches any *UnsupportedTypeError with errors.Is
	ErrUnsupportedType = errors.New("autocompare: unsupported type")
)

// ConfigurationError is returned when a type's configuration cannot be turned
// into a comparer. It always indicates a mistake in setup code
type ConfigurationError struct {
	Type   reflect.Type
	Member string
	Reason string
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	if e.Member == "" {
		return fmt.Sprintf("autocompare: configuring %s: %s", typeName(e.Type), e.Reason)
	}
	return fmt.Sprintf("autocompare: configuring %s.%s: %s", typeName(e.Type), e.Member, e.Reason)
}

// Is lets errors.Is match ErrConfiguration
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// UnsupportedTypeError is returned when a member's type fits none of the
// comparison categories (channels, functions, unsafe pointers...)
type UnsupportedTypeError struct {
	Type       reflect.Type
	Member     string
	MemberType reflect.Type
}

// Error implements the error interface
func (e *UnsupportedTypeError) Error() string {
	if e.Member == "" {
		return fmt.Sprintf("autocompare: cannot compare values of type %s", typeName(e.Type))
	}
	return fmt.Sprintf("autocompare: cannot compare member %s.%s of type %s", typeName(e.Type), e.Member, typeName(e.MemberType))
}

// Is lets errors.Is match ErrUnsupportedType
func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
