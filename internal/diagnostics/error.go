package diagnostics

import (
	"fmt"

	"github.com/funvibe/serpent/internal/token"
)

type ErrorCode string

const (
	ErrL001 ErrorCode = "L001" // invalid token
	ErrP001 ErrorCode = "P001" // unexpected token
	ErrP002 ErrorCode = "P002" // bad indentation
	ErrP003 ErrorCode = "P003" // trailing input
	ErrN001 ErrorCode = "N001" // name not found
	ErrT001 ErrorCode = "T001" // type error
	ErrR001 ErrorCode = "R001" // index or slice out of range
	ErrA001 ErrorCode = "A001" // division by zero
	ErrC001 ErrorCode = "C001" // semantic contract violated
	ErrM001 ErrorCode = "M001" // module not found or circular import
	ErrX001 ErrorCode = "X001" // resource limit
)

// Frame is one entry of the call trace attached to runtime errors.
type Frame struct {
	Name   string
	Module string
	Range  token.Range
}

// Error is the single diagnostic reported by the parser or the evaluator.
// Range is nil until someone at a statement or call boundary attaches one.
type Error struct {
	Code    ErrorCode
	Module  string
	Message string
	Range   *token.Range
	Trace   []Frame
}

func NewError(code ErrorCode, module string, r token.Range, format string, args ...interface{}) *Error {
	rng := r
	return &Error{
		Code:    code,
		Module:  module,
		Message: fmt.Sprintf(format, args...),
		Range:   &rng,
	}
}

// Errorf creates an error without a source range.
func Errorf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) HasRange() bool {
	return e.Range != nil
}

// WithRange fills module and range if the error does not carry them yet.
func (e *Error) WithRange(module string, r token.Range) *Error {
	if e.Range == nil {
		rng := r
		e.Range = &rng
		e.Module = module
	}
	if e.Module == "" {
		e.Module = module
	}
	return e
}

// EditorView returns a copy whose range is 1-based.
func (e *Error) EditorView() *Error {
	out := *e
	if e.Range != nil {
		r := e.Range.EditorView()
		out.Range = &r
	}
	out.Trace = make([]Frame, len(e.Trace))
	for i, f := range e.Trace {
		f.Range = f.Range.EditorView()
		out.Trace[i] = f
	}
	return &out
}

func (e *Error) Error() string {
	prefix := ""
	if e.Module != "" {
		prefix = e.Module + ":"
	}
	if e.Range != nil {
		prefix += e.Range.Start.String() + ":"
	}
	if prefix != "" {
		prefix += " "
	}
	return fmt.Sprintf("%s%s: %s", prefix, e.Code, e.Message)
}
