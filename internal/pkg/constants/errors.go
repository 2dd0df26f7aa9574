package constants

import "net/http"

type CodedError struct {
	msg  string
	code int
}

func NewCodedError(msg string, code int) *CodedError {
	return &CodedError{msg: msg, code: code}
}

func (e *CodedError) Error() string {
	return e.msg
}

func (e *CodedError) Code() int {
	return e.code
}

var (
	ErrDBNotFound       = NewCodedError("not found", http.StatusNotFound)
	ErrUnauthorized     = NewCodedError("unauthorized", http.StatusUnauthorized)
	ErrBadRequest       = NewCodedError("bad request", http.StatusBadRequest)
	ErrScreenNotFound   = NewCodedError("screen not found", http.StatusNotFound)
	ErrRecordNotVisible = NewCodedError("record is not in the visible list", http.StatusNotFound)
	ErrImportEmpty      = NewCodedError("no records found on the page", http.StatusUnprocessableEntity)
)
