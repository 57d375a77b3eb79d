package pg

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	g, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig(false))
	require.NoError(t, err)

	return New(g, g), mock
}

func TestDB_WithinTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("commits when fn succeeds", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		var inner *gorm.DB
		err := db.WithinTransaction(ctx, func(ctx context.Context) error {
			inner = db.Write(ctx)
			return nil
		})
		require.NoError(t, err)
		assert.NotSame(t, db.write, inner)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err := db.WithinTransaction(ctx, func(ctx context.Context) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested call joins the outer transaction", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		err := db.WithinTransaction(ctx, func(outer context.Context) error {
			outerTx := db.Write(outer)
			return db.WithinTransaction(outer, func(inner context.Context) error {
				assert.Same(t, outerTx, db.Write(inner))
				return nil
			})
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestConfig_DSN(t *testing.T) {
	c := Config{User: "app", Host: "db", Port: "5432", Password: "secret", Database: "market"}
	assert.Equal(t, "host=db user=app password=secret dbname=market port=5432 sslmode=disable", c.DSN())

	c.URL = "postgres://app:secret@db:5432/market"
	assert.Equal(t, "postgres://app:secret@db:5432/market", c.DSN())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "users_phone_number_key"`)))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: users.phone_number")))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))
	assert.False(t, IsUniqueViolation(nil))
}
