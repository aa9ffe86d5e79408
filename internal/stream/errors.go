package stream

import (
	"errors"
	"fmt"
)

var (
	ErrDecode     = errors.New("stream: decode record")
	ErrConnection = errors.New("stream: log connection")
	ErrEncode     = errors.New("stream: encode value")
)

// DecodeError is a single record whose value is not JSON. It never stops the consumer.
type DecodeError struct {
	Partition int
	Offset    int64
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("stream: decode record p%d@%d: %v", e.Partition, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// ConnectionError is a failure to reach the log. It is fatal to the consumer.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("stream: %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }
