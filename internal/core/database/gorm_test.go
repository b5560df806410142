package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	tests := []struct {
		name, in, user, pass, want string
	}{
		{
			name: "native dsn untouched",
			in:   "root:pw@tcp(127.0.0.1:3306)/perfume?parseTime=true",
			want: "root:pw@tcp(127.0.0.1:3306)/perfume?parseTime=true",
		},
		{
			name: "jdbc url",
			in:   "jdbc:mysql://localhost:3306/perfume_catalog?useSSL=false&serverTimezone=UTC&characterEncoding=utf8",
			user: "root", pass: "secret",
			want: "root:secret@tcp(localhost:3306)/perfume_catalog?charset=utf8&loc=UTC&parseTime=true&tls=false",
		},
		{
			name: "credentials in query",
			in:   "mysql://db:3306/x?user=app&password=p",
			want: "app:p@tcp(db:3306)/x?charset=utf8mb4&parseTime=true",
		},
		{
			name: "url userinfo, override wins",
			in:   "mysql://a:b@db:3306/x",
			user: "c",
			want: "c:b@tcp(db:3306)/x?charset=utf8mb4&parseTime=true",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeMySQLDSN(tt.in, tt.user, tt.pass))
		})
	}
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "root:****@tcp(db:3306)/x", maskDSN("root:secret@tcp(db:3306)/x"))
	assert.Equal(t, "tcp(db:3306)/x", maskDSN("tcp(db:3306)/x"))
}

func TestNewGorm_UnsupportedDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "sqlite"})
	require.ErrorIs(t, err, ErrUnsupportedDriver)
}
