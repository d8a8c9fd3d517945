package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	lockUserSQL = regexp.QuoteMeta(`SELECT id FROM users WHERE id = ? FOR UPDATE`)
	userRefsSQL = regexp.QuoteMeta(`(SELECT COUNT(*) FROM bookings WHERE user_id = ?) + (SELECT COUNT(*) FROM venues WHERE owner_id = ?)`)

	mysqlDupErr = mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
)

func TestUserRepoDelete(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockUserSQL).WithArgs(uint64(7)).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(userRefsSQL).WithArgs(uint64(7), uint64(7)).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM refresh_tokens WHERE user_id = ?`)).WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = ?`)).WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewUserRepo(db).Delete(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoDelete_ReferencedRollsBack(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockUserSQL).WithArgs(uint64(7)).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(userRefsSQL).WithArgs(uint64(7), uint64(7)).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(3))
	mock.ExpectRollback()

	assert.ErrorIs(t, NewUserRepo(db).Delete(context.Background(), 7), ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoDelete_NotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockUserSQL).WithArgs(uint64(7)).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	assert.ErrorIs(t, NewUserRepo(db).Delete(context.Background(), 7), ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoUpdate_DuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	email := " Taken@Example.com "

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET email = COALESCE(?, email)`)).
		WithArgs("taken@example.com", nil, nil, nil, sqlmock.AnyArg(), uint64(7)).
		WillReturnError(&mysqlDupErr)

	err := NewUserRepo(db).Update(context.Background(), 7, UserUpdate{Email: &email})
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
