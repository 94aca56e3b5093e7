// Package apperr defines the error kinds surfaced by the document service.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error
type Kind string

// Error kinds
const (
	KindValidation    Kind = "validation"
	KindConfiguration Kind = "configuration"
	KindUpstream      Kind = "upstream"
	KindParse         Kind = "parse"
	KindRender        Kind = "render"
	KindStorage       Kind = "storage"
)

// Sentinels for errors.Is matching by kind
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrUpstream      = &Error{Kind: KindUpstream}
	ErrParse         = &Error{Kind: KindParse}
	ErrRender        = &Error{Kind: KindRender}
	ErrStorage       = &Error{Kind: KindStorage}
)

// User-facing messages
const (
	MsgMissingInput   = "텍스트나 이미지 정보가 필요합니다."
	MsgMissingAPIKey  = "%s 환경변수가 설정되지 않았습니다."
	MsgInvalidAPIKey  = "API 키가 유효하지 않습니다. .env 파일의 API 키를 올바르게 입력했는지 확인해 주세요."
	MsgParseFailed    = "AI 응답 처리에 실패했습니다. 입력하신 텍스트 내용이 너무 부족하거나 형식이 맞지 않습니다."
	MsgUpstreamFailed = "AI 엔진 오류: %s"
	MsgExtractFailed  = "데이터 추출 중 오류가 발생했습니다."
	MsgRenderFailed   = "서류 이미지 생성에 실패했습니다."
	MsgAnalyzeFailed  = "데이터 구조화 처리에 실패했습니다."
)

// Error is an application error carrying a kind, a user-facing message and
// the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind Kind, err error, format string, args ...interface{}) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Validation returns a validation error with the given message
func Validation(format string, args ...interface{}) *Error {
	return newError(KindValidation, nil, format, args...)
}

// Configuration returns a configuration error
func Configuration(format string, args ...interface{}) *Error {
	return newError(KindConfiguration, nil, format, args...)
}

// Upstream wraps a failure reported by an external provider
func Upstream(err error, format string, args ...interface{}) *Error {
	return newError(KindUpstream, err, format, args...)
}

// Parse wraps a failure to decode a provider response
func Parse(err error, format string, args ...interface{}) *Error {
	return newError(KindParse, err, format, args...)
}

// Render wraps a document rendering failure
func Render(err error, format string, args ...interface{}) *Error {
	return newError(KindRender, err, format, args...)
}

// Storage wraps a persistence failure
func Storage(err error, format string, args ...interface{}) *Error {
	return newError(KindStorage, err, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// UserMessage returns the user-facing message of err, or fallback when err
// carries none.
func UserMessage(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
