// Package errors defines the error type and functions used throughout
// the gocelery package and its internal packages.
package errors

// Note: this package follows the same pattern asynq's internal/errors
// package uses, which is itself inspired by the Upspin error handling
// post: https://commandcenter.blogspot.com/2017/12/error-handling-in-upspin.html.

import (
	"errors"
	"fmt"
	"strings"
)

// Error is the type that implements the error interface used across
// the package. A value may leave some fields unset.
type Error struct {
	Op   Op
	Code Code
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(string(e.Op))
	}
	if e.Code != Unspecified {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Code.String())
	}
	if e.Err != nil {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Op describes an operation, usually as "package.Method".
type Op string

// Code is the canonical error code carried by Error.
type Code uint8

const (
	Unspecified Code = iota
	// ParseError indicates a malformed URI, query string, or scalar value.
	ParseError
	// Unimplemented indicates a code path the source design leaves undone.
	Unimplemented
	// Disconnected indicates an operation attempted after end() / Close().
	Disconnected
	// Timeout indicates a deadline elapsed while awaiting a result.
	Timeout
	// ConsumerCancelled indicates the broker dropped our AMQP consumer.
	ConsumerCancelled
	// Broker indicates every broker in a failover group failed.
	Broker
)

func (c Code) String() string {
	switch c {
	case Unspecified:
		return "ERROR_CODE_UNSPECIFIED"
	case ParseError:
		return "PARSE_ERROR"
	case Unimplemented:
		return "UNIMPLEMENTED"
	case Disconnected:
		return "DISCONNECTED"
	case Timeout:
		return "TIMEOUT"
	case ConsumerCancelled:
		return "CONSUMER_CANCELLED"
	case Broker:
		return "BROKER_ERROR"
	}
	panic(fmt.Sprintf("unknown error code %d", c))
}

// E builds an Error value from its arguments. There must be at least one
// argument or E panics. The type of each argument determines its meaning:
//
//	Op      the operation being performed
//	Code    the canonical error code
//	error   the underlying error that triggered this one
//	string  treated as an error message
func E(args ...interface{}) error {
	if len(args) == 0 {
		panic("call to errors.E with no arguments")
	}
	e := &Error{}
	for _, arg := range args {
		switch arg := arg.(type) {
		case Op:
			e.Op = arg
		case Code:
			e.Code = arg
		case error:
			e.Err = arg
		case string:
			e.Err = errors.New(arg)
		default:
			panic(fmt.Sprintf("errors.E: bad argument type %T, value %v", arg, arg))
		}
	}
	return e
}

// CanonicalCode returns the canonical code of err if one is present,
// descending through nested *Error values, and Unspecified otherwise. It
// stops at the first error in the chain that is not an *Error.
func CanonicalCode(err error) Code {
	if err == nil {
		return Unspecified
	}
	e, ok := err.(*Error)
	if !ok {
		return Unspecified
	}
	if e.Code == Unspecified {
		return CanonicalCode(e.Err)
	}
	return e.Code
}

// Sentinel reasons used as rejection causes across the correlation engine.
var (
	// ErrCleared is the reason the RPC backend's Delete rejects a
	// still-pending entry with.
	ErrCleared = errors.New("cleared")
	// ErrDisconnecting is the reason end() rejects pending gets with.
	ErrDisconnecting = errors.New("disconnecting")
	// ErrConsumerCancelled is the reason the AMQP RPC backend rejects pending
	// gets with when RabbitMQ drops our consumer.
	ErrConsumerCancelled = errors.New("RabbitMQ cancelled consumer")
)

// New returns an error that formats as the given text. Exported for
// import convenience, mirroring errors.New from the standard library.
func New(text string) error { return errors.New(text) }

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Unwrap returns the result of calling Unwrap on err, if any.
func Unwrap(err error) error { return errors.Unwrap(err) }
