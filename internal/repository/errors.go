package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ユニーク制約違反（注文コードやゲートウェイIDの重複）
	ErrConflict = errors.New("conflict")
)
