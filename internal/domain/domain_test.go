package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{ErrValidation, KindValidation},
		{fmt.Errorf("category 3: %w", ErrNotFound), KindNotFound},
		{ErrReferenceNotFound, KindNotFound},
		{ErrHasDependents, KindConflict},
		{fmt.Errorf("wrap: %w", ErrDuplicateEmail), KindConflict},
		{ErrInvalidToken, KindUnauthenticated},
		{ErrAccountDisabled, KindForbidden},
		{errors.New("connection reset"), KindStorage},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestRoleSet(t *testing.T) {
	rs := NewRoleSet(" user", "ADMIN", "User", "")
	assert.Equal(t, RoleSet{"ADMIN", "USER"}, rs)
	assert.True(t, rs.Has(RoleAdmin))
	assert.True(t, rs.HasAny("EDITOR", RoleUser))
	assert.False(t, rs.HasAny("EDITOR"))

	v, err := rs.Value()
	require.NoError(t, err)
	assert.Equal(t, "ADMIN,USER", v)

	var back RoleSet
	require.NoError(t, back.Scan([]byte("USER,ADMIN")))
	assert.Equal(t, rs, back)

	require.NoError(t, back.Scan(nil))
	assert.Empty(t, back)
	assert.Error(t, back.Scan(42))
}
