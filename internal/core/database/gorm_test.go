package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresDSN(t *testing.T) {
	got := PostgresDSN(Opts{
		Host:     "db",
		Port:     5432,
		Name:     "accounts",
		Username: "app",
		Password: "p w'x",
	})
	assert.Equal(t, `host=db port=5432 user=app dbname=accounts password='p w\'x' sslmode=disable`, got)

	assert.Equal(t, "postgres://x", PostgresDSN(Opts{DSN: "postgres://x", Host: "ignored"}))

	got = PostgresDSN(Opts{Host: "db", Port: 1, Name: "n", Username: "u", SSLMode: "require"})
	assert.Equal(t, "host=db port=1 user=u dbname=n sslmode=require", got)
}

func TestNormalizeMySQLDSN(t *testing.T) {
	cases := []struct {
		name, in, user, pass, want string
	}{
		{"native passthrough", "u:p@tcp(db:3306)/app?parseTime=true", "", "", "u:p@tcp(db:3306)/app?parseTime=true"},
		{"url", "mysql://u:p@db:3306/app", "", "", "u:p@tcp(db:3306)/app?charset=utf8mb4&parseTime=true"},
		{"jdbc", "jdbc:mysql://db:3306/app?characterEncoding=utf8&useUnicode=true", "root", "pw", "root:pw@tcp(db:3306)/app?charset=utf8&parseTime=true"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeMySQLDSN(tc.in, tc.user, tc.pass))
		})
	}
}

func TestNewGorm_UnsupportedDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestNewGorm_SQLiteMigrate(t *testing.T) {
	db, err := NewGorm(Opts{Driver: "sqlite", DSN: "file:gorm_test?mode=memory&cache=shared", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable("users"))
}
