package domain

import "errors"

// Kind 错误分类，由 HTTP 边界映射为状态码
type Kind int

const (
	KindStorage Kind = iota // 未识别的错误一律按存储/内部错误处理
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthenticated
	KindForbidden
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrReferenceNotFound = errors.New("referenced entity not found")

	ErrDuplicateName     = errors.New("name already exists")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrHasDependents     = errors.New("entity has dependents")

	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrForbidden          = errors.New("forbidden")
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrValidation, KindValidation},
	{ErrNotFound, KindNotFound},
	{ErrReferenceNotFound, KindNotFound},
	{ErrDuplicateName, KindConflict},
	{ErrDuplicateUsername, KindConflict},
	{ErrDuplicateEmail, KindConflict},
	{ErrHasDependents, KindConflict},
	{ErrInvalidCredentials, KindUnauthenticated},
	{ErrInvalidToken, KindUnauthenticated},
	{ErrAccountDisabled, KindForbidden},
	{ErrForbidden, KindForbidden},
}

// KindOf 返回 err 链上第一个已知哨兵错误的分类
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindStorage
}
