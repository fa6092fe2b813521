package errs

import (
	"fmt"
	"strings"
)

const (
	ErrCode_OK              = 0
	ErrCode_Unknown         = 1
	ErrCode_InvalidArgument = 2
	ErrCode_Closed          = 3
	ErrCode_Busy            = 4
)

var (
	Unknown         = CreateCodeError(ErrCode_Unknown, "UNKNOWN")
	InvalidArgument = CreateCodeError(ErrCode_InvalidArgument, "INVALID_ARGUMENT")
	Closed          = CreateCodeError(ErrCode_Closed, "CLOSED")
	Busy            = CreateCodeError(ErrCode_Busy, "BUSY")
)

// CodeError 带错误码的error，Is只比较错误码
type CodeError interface {
	error
	Code() int32
	Print(extras ...string) CodeError
	Printf(format string, args ...any) CodeError
	Is(error) bool
}

func CreateCodeError(code int32, desc string) CodeError {
	return &codeError{code: code, desc: desc}
}

func WrapError(err error) CodeError {
	if x, ok := err.(*codeError); ok {
		return x
	}
	return CreateCodeError(ErrCode_Unknown, err.Error())
}

type codeError struct {
	code int32
	desc string
}

func (e *codeError) Code() int32 {
	return e.code
}

func (e *codeError) Error() string {
	return e.desc
}

// Print 附加说明，返回新error，不修改原值
func (e *codeError) Print(extras ...string) CodeError {
	if len(extras) == 0 {
		return e
	}
	var b strings.Builder
	b.WriteString(e.desc)
	for _, extra := range extras {
		b.WriteByte(',')
		b.WriteString(extra)
	}
	return &codeError{code: e.code, desc: b.String()}
}

func (e *codeError) Printf(format string, args ...any) CodeError {
	if len(format) == 0 {
		return e
	}
	return &codeError{code: e.code, desc: e.desc + "," + fmt.Sprintf(format, args...)}
}

func (e *codeError) Is(target error) bool {
	if x, ok := target.(*codeError); ok {
		return x.code == e.code
	}
	return false
}
