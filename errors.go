package rxbridge

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrAlreadySubscribed is returned when a single-subscription source is
	// subscribed a second time.
	ErrAlreadySubscribed = errors.New("this source supports only one concurrent subscription")

	// ErrNilSource is returned when an adapter is given a nil push source.
	ErrNilSource = errors.New("push source is required")

	// ErrNilObserver is returned when Subscribe is called with a nil observer.
	ErrNilObserver = errors.New("observer is required")

	// ErrNilReply is carried by ReplyError when a reply has neither a result
	// nor a cause.
	ErrNilReply = errors.New("reply carried no result")
)

// UsageError reports a violation of an adapter's calling contract. It is
// returned synchronously from the offending call.
type UsageError struct {
	Op  string
	Err error
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("rxbridge: %s: %v", e.Op, e.Err)
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// ReplyError is delivered to OnError when an asynchronous reply produced a
// null result and no cause.
type ReplyError struct {
	Err error
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("rxbridge: reply failed: %v", e.Err)
}

func (e *ReplyError) Unwrap() error {
	return e.Err
}

func usageError(op string, err error) error {
	return &UsageError{Op: op, Err: err}
}
