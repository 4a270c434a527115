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

package feedback

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/feedback/apperrors"
	"github.com/tomoncle/feedback/database"
	"github.com/tomoncle/feedback/repository"
	"github.com/tomoncle/feedback/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestService(t *testing.T) (Service, *bun.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.NewMigrationManager(db, nil).RunMigrations(context.Background()))

	return NewService(repository.NewFeedbackRepository(db)), db
}

func payload() types.Payload {
	return types.Payload{
		"session_id": "sess_demo",
		"item_type":  "playlist",
		"feedback":   "like",
		"intent":     "maintain",
		"emotion":    "joy",
	}
}

func countRows(t *testing.T, db *bun.DB) int {
	t.Helper()
	n, err := db.NewSelect().Table("feedback_events").Count(context.Background())
	require.NoError(t, err)
	return n
}

func TestEnumDomainsOnCreate(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)

	accepted := map[string][]string{
		"item_type": {"playlist", "track"},
		"feedback":  {"like", "dislike", "skip", "save", "share", "undo"},
		"intent":    {"maintain", "change"},
		"emotion":   {"joy", "sadness", "anger"},
	}
	created := 0
	for field, values := range accepted {
		for _, v := range values {
			p := payload()
			p[field] = v
			_, err := svc.Create(ctx, p)
			require.NoError(t, err, "%s=%s", field, v)
			created++
		}
		for _, v := range []string{"LIKE", "unknown", "", " joy"} {
			p := payload()
			p[field] = v
			_, err := svc.Create(ctx, p)
			assert.ErrorIs(t, err, apperrors.ErrValidation, "%s=%q", field, v)
		}
	}
	assert.Equal(t, created, countRows(t, db))
}

func TestConfidenceBounds(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)

	id, err := svc.Create(ctx, payload())
	require.NoError(t, err)

	for _, v := range []string{"-0.1", "1.5", "100"} {
		p := payload()
		p["confidence"] = json.Number(v)
		_, err := svc.Create(ctx, p)
		assert.ErrorIs(t, err, apperrors.ErrValidation, v)

		err = svc.Update(ctx, id, types.Payload{"confidence": json.Number(v)})
		assert.ErrorIs(t, err, apperrors.ErrValidation, v)
	}
	assert.Equal(t, 1, countRows(t, db))

	for _, v := range []string{"0", "0.0", "0.85", "1", "1.0"} {
		p := payload()
		p["confidence"] = json.Number(v)
		_, err := svc.Create(ctx, p)
		assert.NoError(t, err, v)

		assert.NoError(t, svc.Update(ctx, id, types.Payload{"confidence": json.Number(v)}), v)
	}
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	p := payload()
	p["item_id"] = "pl_joy_001"
	p["provider"] = "deezer"
	p["reason_code"] = "too_slow"
	p["comment"] = "great mix"
	p["confidence"] = json.Number("0.85")
	p["latency_ms"] = json.Number("120")
	p["retries"] = json.Number("2")
	p["client_device"] = "ios"
	p["client_version"] = "3.2.1"
	p["trace_id"] = "trace-1"

	id, err := svc.Create(ctx, p)
	require.NoError(t, err)

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.FeedbackID)
	assert.Equal(t, "sess_demo", got.SessionID)
	assert.Equal(t, "playlist", got.ItemType)
	assert.Equal(t, "like", got.Feedback)
	assert.Equal(t, "maintain", got.Intent)
	assert.Equal(t, "joy", got.Emotion)
	assert.Equal(t, "pl_joy_001", *got.ItemID)
	assert.Equal(t, "deezer", *got.Provider)
	assert.Equal(t, "too_slow", *got.ReasonCode)
	assert.Equal(t, "great mix", *got.Comment)
	assert.InDelta(t, 0.85, *got.Confidence, 1e-9)
	assert.Equal(t, int64(120), *got.LatencyMs)
	assert.Equal(t, int64(2), *got.Retries)
	assert.Equal(t, "ios", *got.ClientDevice)
	assert.Equal(t, "3.2.1", *got.ClientVersion)
	assert.Equal(t, "trace-1", *got.TraceID)
	assert.Nil(t, got.ProviderPlaylistID)
	assert.Nil(t, got.SupersedesEventID)
	assert.False(t, got.CreatedAt.IsZero())

	upper, err := svc.Get(ctx, strings.ToUpper(id))
	require.NoError(t, err)
	assert.Equal(t, id, upper.FeedbackID)
}

func TestCreateDefaultsProvider(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	id, err := svc.Create(ctx, payload())
	require.NoError(t, err)
	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.Provider)
	assert.Equal(t, "spotify", *got.Provider)
}

func TestCreateMissingRequired(t *testing.T) {
	svc, db := newTestService(t)

	p := payload()
	delete(p, "session_id")
	delete(p, "emotion")
	_, err := svc.Create(context.Background(), p)
	require.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "session_id")
	assert.Contains(t, err.Error(), "emotion")
	assert.Equal(t, 0, countRows(t, db))
}

func TestDeleteIsNotIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	assert.ErrorIs(t, svc.Delete(ctx, uuid.NewString()), apperrors.ErrNotFound)

	id, err := svc.Create(ctx, payload())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, id))
	assert.ErrorIs(t, svc.Delete(ctx, id), apperrors.ErrNotFound)
}

func TestPagination(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	for i := 0; i < 5; i++ {
		p := payload()
		p["session_id"] = "sess_page"
		_, err := svc.Create(ctx, p)
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, payload())
	require.NoError(t, err)

	seen := map[string]bool{}
	for page, want := range []int{2, 2, 1} {
		res, err := svc.List(ctx, ListQuery{
			Filters:  map[string]string{"session_id": "sess_page"},
			Page:     page + 1,
			PageSize: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, 5, res.Total)
		require.Len(t, res.Items, want)
		for _, e := range res.Items {
			assert.False(t, seen[e.FeedbackID], "duplicate across pages")
			seen[e.FeedbackID] = true
		}
	}
	assert.Len(t, seen, 5)
}

func TestListPageBeyondRange(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, payload())
		require.NoError(t, err)
	}

	for _, page := range []int{3, math.MaxInt/2 + 2, math.MaxInt} {
		res, err := svc.List(ctx, ListQuery{Page: page, PageSize: 2})
		require.NoError(t, err, page)
		assert.Equal(t, 3, res.Total, page)
		assert.Empty(t, res.Items, page)
		assert.LessOrEqual(t, res.Page, types.MaxPage, page)
	}
}

func TestPartialUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	p := payload()
	p["item_id"] = "pl_1"
	p["comment"] = "keep me"
	p["confidence"] = json.Number("0.5")
	id, err := svc.Create(ctx, p)
	require.NoError(t, err)
	before, err := svc.Get(ctx, id)
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, id, types.Payload{"feedback": "dislike", "bogus": 1}))

	after, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "dislike", after.Feedback)

	after.Feedback = before.Feedback
	assert.Equal(t, before.FeedbackID, after.FeedbackID)
	assert.Equal(t, before.SessionID, after.SessionID)
	assert.Equal(t, before.ItemID, after.ItemID)
	assert.Equal(t, before.Comment, after.Comment)
	assert.Equal(t, before.Confidence, after.Confidence)
	assert.Equal(t, before.Provider, after.Provider)
	assert.True(t, before.CreatedAt.Equal(after.CreatedAt))
}

func TestUpdateRejectsEmptySelection(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	id, err := svc.Create(ctx, payload())
	require.NoError(t, err)

	err = svc.Update(ctx, id, types.Payload{"feedback_id": uuid.NewString(), "created_at": "x"})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "no valid fields to update")
}

func TestFilterCombination(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	for _, combo := range [][2]string{
		{"track", "skip"},
		{"track", "like"},
		{"playlist", "skip"},
		{"track", "skip"},
	} {
		p := payload()
		p["item_type"] = combo[0]
		p["feedback"] = combo[1]
		_, err := svc.Create(ctx, p)
		require.NoError(t, err)
	}

	res, err := svc.List(ctx, ListQuery{Filters: map[string]string{"item_type": "track", "feedback": "skip"}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	for _, e := range res.Items {
		assert.Equal(t, "track", e.ItemType)
		assert.Equal(t, "skip", e.Feedback)
	}

	_, err = svc.List(ctx, ListQuery{Filters: map[string]string{"feedback": "meh"}})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUnknownAndMalformedIdentifiers(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	missing := uuid.NewString()

	_, err := svc.Get(ctx, missing)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, svc.Update(ctx, missing, types.Payload{"comment": "x"}), apperrors.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, missing), apperrors.ErrNotFound)

	for _, bad := range []string{"abc", "123", "not-a-uuid-at-all"} {
		_, err := svc.Get(ctx, bad)
		assert.ErrorIs(t, err, apperrors.ErrValidation, bad)
		assert.ErrorIs(t, svc.Update(ctx, bad, types.Payload{"comment": "x"}), apperrors.ErrValidation, bad)
		assert.ErrorIs(t, svc.Delete(ctx, bad), apperrors.ErrValidation, bad)
	}
}

func TestHealth(t *testing.T) {
	svc, db := newTestService(t)
	assert.NoError(t, svc.Health(context.Background()))

	require.NoError(t, db.Close())
	err := svc.Health(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
}

func TestDefaultServiceWithoutDatabase(t *testing.T) {
	svc := NewDefaultService()
	err := svc.Health(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
}

func TestDefaultServiceSurvivesReconnect(t *testing.T) {
	ctx := context.Background()
	t.Setenv("DB_TYPE", "")

	_, err := database.InitDB(ctx, &database.Config{
		ConnectionConfig: database.ConnectionConfig{
			Type:   "sqlite",
			DBName: filepath.Join(t.TempDir(), "feedback.db"),
		},
		DataMigrateConfig: database.DataMigrateConfig{EnableMigrateOnStartup: true, EnableIndexes: true},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CloseDB() })

	svc := NewDefaultService()
	first, err := svc.Create(ctx, payload())
	require.NoError(t, err)

	require.NoError(t, database.GetDatabaseManager().Reconnect(ctx))

	second, err := svc.Create(ctx, payload())
	require.NoError(t, err)
	got, err := svc.Get(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, first, got.FeedbackID)
	assert.NotEqual(t, first, second)
	assert.NoError(t, svc.Health(ctx))

	require.NoError(t, database.CloseDB())
	assert.ErrorIs(t, svc.Health(ctx), apperrors.ErrStoreUnavailable)
	_, err = svc.Create(ctx, payload())
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
}
