package repo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"perfume-catalog/internal/domain"
)

func TestTranslate(t *testing.T) {
	boom := errors.New("connection reset")

	testCases := []struct {
		name string
		err  error
		onFK error
		want error
	}{
		{
			name: "nil stays nil",
			err:  nil,
			want: nil,
		},
		{
			name: "postgres unique on username",
			err:  fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_username"}),
			want: domain.ErrDuplicateUsername,
		},
		{
			name: "postgres unique on email",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"},
			want: domain.ErrDuplicateEmail,
		},
		{
			name: "postgres fk violation on delete",
			err:  &pgconn.PgError{Code: "23503", ConstraintName: "fk_categories_brands"},
			onFK: domain.ErrHasDependents,
			want: domain.ErrHasDependents,
		},
		{
			name: "mysql duplicate entry",
			err:  &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'bob@x.io' for key 'users.idx_users_email'"},
			want: domain.ErrDuplicateEmail,
		},
		{
			name: "mysql row referenced",
			err:  &mysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"},
			onFK: domain.ErrHasDependents,
			want: domain.ErrHasDependents,
		},
		{
			name: "mysql missing parent on insert",
			err:  &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"},
			onFK: domain.ErrReferenceNotFound,
			want: domain.ErrReferenceNotFound,
		},
		{
			name: "gorm duplicated key without constraint name falls back",
			err:  gorm.ErrDuplicatedKey,
			want: domain.ErrDuplicateUsername,
		},
		{
			name: "unrelated error passes through",
			err:  boom,
			want: boom,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := translate(tc.err, tc.onFK, domain.ErrDuplicateUsername, userUnique...)
			if tc.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tc.want)
		})
	}
}

func TestTranslate_FKWithoutMappingKeepsOriginal(t *testing.T) {
	orig := &pgconn.PgError{Code: "23503"}
	got := translate(orig, nil, domain.ErrDuplicateName)
	assert.Same(t, orig, got)
}

func TestNotFound(t *testing.T) {
	assert.ErrorIs(t, notFound(fmt.Errorf("first: %w", gorm.ErrRecordNotFound)), domain.ErrNotFound)

	other := errors.New("timeout")
	assert.Equal(t, other, notFound(other))
}
