package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
	ErrInvalidKey  = errors.New("db: invalid key")
)

// Op constants map to Redis command names for error context.
// The file store reuses them for the equivalent filesystem operation.
const (
	OpPing      = "PING"
	OpDel       = "DEL"
	OpGet       = "GET"
	OpSet       = "SET"
	OpRPush     = "RPUSH"
	OpLTrim     = "LTRIM"
	OpLRange    = "LRANGE"
	OpPublish   = "PUBLISH"
	OpSubscribe = "SUBSCRIBE"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
