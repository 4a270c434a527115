/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package repository

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/feedback/apperrors"
	"github.com/tomoncle/feedback/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
)

func newMockRepository(t *testing.T) (FeedbackRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, mysqldialect.New())
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewFeedbackRepository(db), mock
}

func refused() error {
	return &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connect: connection refused")}
}

func TestCreateDuplicateKey(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectExec("INSERT INTO `feedback_events`").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry for key 'PRIMARY'"})

	_, err := repo.Create(context.Background(), newEvent("s", "like"))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindDuplicateKey, apperrors.KindOf(err))
	assert.Equal(t, 500, apperrors.From(err).HTTPStatus())
}

func TestCreateStoreUnavailable(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectExec("INSERT INTO `feedback_events`").WillReturnError(refused())

	_, err := repo.Create(context.Background(), newEvent("s", "like"))
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
}

func TestGetStoreUnavailable(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery("SELECT .* FROM `feedback_events`").WillReturnError(refused())

	_, err := repo.Get(context.Background(), "a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11")
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
}

func TestListStoreError(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery("SELECT count\\(\\*\\)").WillReturnError(errors.New("syntax error near count"))

	_, err := repo.List(context.Background(), types.NewPageRequestWithFilter(1, 10, nil))
	assert.ErrorIs(t, err, apperrors.ErrStore)
}

func TestListEmptySkipsPageQuery(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `feedback_events` AS `fe` WHERE .*`session_id` = 'nobody'").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	res, err := repo.List(context.Background(),
		types.NewPageRequestWithFilter(1, 10, types.NewQueryFilter().Eq("session_id", "nobody")))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)
	assert.Empty(t, res.Items)
}

func TestUpdateBindsWhitelistedColumns(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectExec("UPDATE `feedback_events` .*SET `comment` = 'it.{1,2}s fine', `feedback` = 'skip' WHERE .*`feedback_id` = 'x'").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.Update(context.Background(), "x", map[string]interface{}{
		"feedback": "skip",
		"comment":  "it's fine",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestUpdateStoreError(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectExec("UPDATE `feedback_events`").WillReturnError(errors.New("deadlock found"))

	_, err := repo.Update(context.Background(), "x", map[string]interface{}{"comment": "c"})
	assert.ErrorIs(t, err, apperrors.ErrStore)
}

func TestDeleteStoreUnavailable(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectExec("DELETE FROM `feedback_events`").WillReturnError(mysql.ErrInvalidConn)

	_, err := repo.Delete(context.Background(), "x")
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
}

func TestPingFailure(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery("SELECT 1").WillReturnError(refused())

	err := repo.Ping(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
}
