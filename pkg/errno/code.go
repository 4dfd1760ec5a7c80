package errno

import (
	"errors"
	"fmt"
)

// code=0 请求成功
// code=4xx 客户端请求错误
// code=5xx 服务器端错误
// code=2xxxx 业务处理错误码

type Errno struct {
	Code    int
	Message string
}

// Error 实现error接口
func (e *Errno) Error() string {
	return e.Message
}

var (
	OK = &Errno{Code: 200, Message: "Success"}

	ErrInvalidParam = &Errno{Code: 400, Message: "Invalid parameter"}
	ErrUnauthorized = &Errno{Code: 401, Message: "Unauthorized"}
	ErrNotFound     = &Errno{Code: 404, Message: "Not found"}
	ErrConflict     = &Errno{Code: 409, Message: "Conflict"}

	ErrInternalServer = &Errno{Code: 500, Message: "Internal server error"}
	ErrDatabase       = &Errno{Code: 501, Message: "Database error"}
	ErrUnknown        = &Errno{Code: 510, Message: "Unknown error"}

	// 业务错误码
	ErrMissingParam          = &Errno{Code: 20001, Message: "Missing required parameter"}
	ErrLivestreamNotFound    = &Errno{Code: 20002, Message: "Livestream not found"}
	ErrAlreadyInProgress     = &Errno{Code: 20003, Message: "Processing already in progress"}
	ErrMaxRetriesReached     = &Errno{Code: 20004, Message: "Max retries reached"}
	ErrTranscriptionRequired = &Errno{Code: 20005, Message: "Transcription status not found"}
	ErrTranscriptNotFound    = &Errno{Code: 20006, Message: "Transcript file not found"}
	ErrNoChapters            = &Errno{Code: 20007, Message: "No chapters generated"}
	ErrRecordingTokenMissing = &Errno{Code: 20008, Message: "Recording token missing"}
	ErrProviderFailed        = &Errno{Code: 20009, Message: "Provider request failed"}
	ErrInvalidChapters       = &Errno{Code: 20010, Message: "Chapter output failed validation"}
	ErrLockNotAcquired       = &Errno{Code: 20011, Message: "Lock held by another worker"}
)

// BizError 业务错误，携带错误码与底层原因
type BizError struct {
	*Errno
	Detail string
	Cause  error
}

// New 构造业务错误
func New(code *Errno, detail string, cause error) *BizError {
	return &BizError{Errno: code, Detail: detail, Cause: cause}
}

// Wrapf 以格式化描述包装原因
func Wrapf(code *Errno, cause error, format string, args ...interface{}) *BizError {
	return &BizError{Errno: code, Detail: fmt.Sprintf(format, args...), Cause: cause}
}

func (e *BizError) Error() string {
	msg := e.Errno.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *BizError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Errno}
	}
	return []error{e.Errno, e.Cause}
}

// Decode 提取错误码，未知错误归为 500
func Decode(err error) *Errno {
	if err == nil {
		return OK
	}
	var biz *BizError
	if errors.As(err, &biz) {
		return biz.Errno
	}
	var e *Errno
	if errors.As(err, &e) {
		return e
	}
	return ErrInternalServer
}

// HTTPStatus 业务错误码映射为 HTTP 状态码
func HTTPStatus(e *Errno) int {
	switch e {
	case OK:
		return 200
	case ErrInvalidParam, ErrMissingParam:
		return 400
	case ErrUnauthorized:
		return 401
	case ErrNotFound, ErrLivestreamNotFound:
		return 404
	case ErrConflict, ErrAlreadyInProgress, ErrLockNotAcquired:
		return 409
	}
	if e.Code >= 400 && e.Code < 500 {
		return e.Code
	}
	return 500
}
