package repo

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"perfume-catalog/internal/domain"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	myDupEntry         = 1062
	myRowIsReferenced  = 1451 // 删除父行时被子行引用
	myRowIsReferenced2 = 1217
	myNoReferencedRow  = 1452 // 写子行时父行不存在
)

// uniqueTarget 约束名 -> 领域错误
type uniqueTarget struct {
	constraint string
	err        error
}

// notFound 查询类错误：记录不存在 -> domain.ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// translate 把存储层的唯一/外键冲突映射为领域错误，
// 作为并发下"先查后插"的最终兜底。
// onFK: 外键冲突时返回的错误（删父行 -> ErrHasDependents，写子行 -> ErrReferenceNotFound）
// onDup: 唯一冲突无法按约束名识别时返回的错误
func translate(err error, onFK, onDup error, targets ...uniqueTarget) error {
	if err == nil {
		return nil
	}
	if out := classify(err, onFK, onDup, targets); out != nil {
		return out
	}
	return err
}

func classify(err error, onFK, onDup error, targets []uniqueTarget) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return pick(pgErr.ConstraintName+" "+pgErr.Detail, onDup, targets)
		case pgForeignKeyViolation:
			return onFK
		}
		return err
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case myDupEntry:
			return pick(myErr.Message, onDup, targets)
		case myRowIsReferenced, myRowIsReferenced2, myNoReferencedRow:
			return onFK
		}
		return err
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) || isDupKey(err) {
		return pick(err.Error(), onDup, targets)
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return onFK
	}
	return err
}

func pick(detail string, fallback error, targets []uniqueTarget) error {
	for _, t := range targets {
		if strings.Contains(detail, t.constraint) {
			return t.err
		}
	}
	return fallback
}

func isDupKey(err error) bool {
	// 其他驱动没有结构化错误时按消息兜底
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
