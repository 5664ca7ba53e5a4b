package core

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrdering(t *testing.T) {
	tests := []struct {
		in   string
		want []DBOrdering
	}{
		{in: ""},
		{in: " , -"},
		{in: "grade", want: []DBOrdering{{Field: "grade", Ascending: true}}},
		{in: "-grade, name ,-id", want: []DBOrdering{{Field: "grade"}, {Field: "name", Ascending: true}, {Field: "id"}}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseOrdering(tt.in), tt.in)
	}
}

func TestDBOrdering_String(t *testing.T) {
	assert.Equal(t, "id ASC", DBOrdering{Field: "id", Ascending: true}.String())
	assert.Equal(t, "grade DESC", DBOrdering{Field: "grade"}.String())
}

func TestRunInTx(t *testing.T) {
	ctx := context.Background()
	newDB := func(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
		mockDB, mock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() {
			assert.NoError(t, mock.ExpectationsWereMet())
			_ = mockDB.Close()
		})
		return sqlx.NewDb(mockDB, "postgres"), mock
	}

	t.Run("commit", func(t *testing.T) {
		db, mock := newDB(t)
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM grade_record").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := RunInTx(ctx, db, func(exec DBExecutor) error {
			_, err := exec.ExecContext(ctx, "DELETE FROM grade_record")
			return err
		})
		assert.NoError(t, err)
	})

	t.Run("rollback on error", func(t *testing.T) {
		db, mock := newDB(t)
		fnErr := errors.New("bad row")
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := RunInTx(ctx, db, func(DBExecutor) error { return fnErr })
		assert.Equal(t, fnErr, errors.Cause(err))
	})

	t.Run("rollback error shuts down", func(t *testing.T) {
		db, mock := newDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback().WillReturnError(errors.New("connection reset"))

		err := RunInTx(ctx, db, func(DBExecutor) error { return errors.New("bad row") })
		require.Error(t, err)
		assert.True(t, IsShutdown(err))
		assert.Contains(t, err.Error(), "connection reset")
		assert.Contains(t, err.Error(), "bad row")
	})

	t.Run("rollback on panic", func(t *testing.T) {
		db, mock := newDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.PanicsWithValue(t, "boom", func() {
			_ = RunInTx(ctx, db, func(DBExecutor) error { panic("boom") })
		})
	})

	t.Run("begin error", func(t *testing.T) {
		db, mock := newDB(t)
		beginErr := errors.New("too many connections")
		mock.ExpectBegin().WillReturnError(beginErr)

		called := false
		err := RunInTx(ctx, db, func(DBExecutor) error { called = true; return nil })
		assert.Equal(t, beginErr, errors.Cause(err))
		assert.False(t, called)
	})
}
