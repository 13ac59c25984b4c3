package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	//400 入力不正
	ErrValidation = errors.New("validation error")
	//500 外部設定（口座など）が無い
	ErrConfiguration = errors.New("configuration error")
	//500 注文コードの衝突がリトライしても解消しない
	ErrConflict = errors.New("conflict")
	//401 webhookの認証失敗
	ErrUnauthorized = errors.New("unauthorized")
	//404
	ErrNotFound = errors.New("not found")
	//メール・CMSの失敗。呼び出し元には返さずログだけ
	ErrExternal = errors.New("external dependency error")
	//500
	ErrInternal = errors.New("internal error")
)

type HTTPError struct {
	Status  int
	Message string
	Kind    error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Kind
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
		Kind:    kindForStatus(status),
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

func validationError(message string) error {
	return &HTTPError{Status: http.StatusBadRequest, Message: message, Kind: ErrValidation}
}

func configurationError(message string) error {
	return &HTTPError{Status: http.StatusInternalServerError, Message: message, Kind: ErrConfiguration}
}

func internalError(message string) error {
	return &HTTPError{Status: http.StatusInternalServerError, Message: message, Kind: ErrInternal}
}

func kindForStatus(status int) error {
	switch status {
	case http.StatusBadRequest:
		return ErrValidation
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	default:
		return ErrInternal
	}
}
