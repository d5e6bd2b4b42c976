// Package code defines API response codes.
package code

import "fmt"

// Code pairs a numeric API code with a message and optional details.
type Code struct {
	code    int
	status  bool
	msg     string
	details []string
}

var codes = map[int]string{}

// NewError registers an error code. Registering a duplicate code panics so
// collisions surface at startup.
func NewError(code int, msg string) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("error code %d already exists", code))
	}
	codes[code] = msg
	return &Code{code: code, status: false, msg: msg}
}

// NewSuccess registers a success code.
func NewSuccess(code int, msg string) *Code {
	return &Code{code: code, status: true, msg: msg}
}

func (c *Code) Code() int { return c.code }

func (c *Code) Msg() string { return c.msg }

func (c *Code) IsSuccess() bool { return c.status }

func (c *Code) Details() []string { return c.details }

// WithDetails returns a copy carrying extra detail strings.
func (c *Code) WithDetails(details ...string) *Code {
	clone := *c
	clone.details = append([]string{}, details...)
	return &clone
}

var (
	Success              = NewSuccess(0, "success")
	ErrorInvalidParams   = NewError(10001, "invalid request parameters")
	ErrorNotFound        = NewError(10002, "resource not found")
	ErrorDBQuery         = NewError(10003, "database query failed")
	ErrorTooManyRequests = NewError(10004, "too many requests")
	ErrorSyncBusy        = NewError(10005, "sync operation already running")
	ErrorInternal        = NewError(10006, "internal error")
)
