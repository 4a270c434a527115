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
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/tomoncle/feedback/apperrors"
	"github.com/tomoncle/feedback/database"
	"github.com/tomoncle/feedback/models"
	"github.com/tomoncle/feedback/types"
	"github.com/tomoncle/feedback/validation"
	"github.com/uptrace/bun"
)

const entityName = "feedback event"

type feedbackRepositoryImpl struct {
	db bun.IDB
}

// NewFeedbackRepository returns a FeedbackRepository over db, which may be a
// *bun.DB or a bun.Tx.
func NewFeedbackRepository(db bun.IDB) FeedbackRepository {
	return &feedbackRepositoryImpl{db: db}
}

func (r *feedbackRepositoryImpl) Create(ctx context.Context, event *models.FeedbackEvent) (string, error) {
	if event == nil {
		return "", apperrors.Validation("feedback event must not be empty")
	}
	if event.FeedbackID == "" {
		event.FeedbackID = uuid.NewString()
	}
	if _, err := r.db.NewInsert().Model(event).Exec(ctx); err != nil {
		return "", classify("create", event.FeedbackID, err)
	}
	return event.FeedbackID, nil
}

func (r *feedbackRepositoryImpl) Get(ctx context.Context, id string) (*models.FeedbackEvent, error) {
	event := new(models.FeedbackEvent)
	err := r.db.NewSelect().
		Model(event).
		Where("? = ?", bun.Ident("feedback_id"), id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound(entityName, id)
		}
		return nil, classify("get", id, err)
	}
	return event, nil
}

// List keeps only conditions on filterable columns with non-empty values and
// always applies DefaultOrders.
func (r *feedbackRepositoryImpl) List(ctx context.Context, pageRequest *types.PageRequest) (*types.Pagination[models.FeedbackEvent], error) {
	if pageRequest == nil {
		pageRequest = types.NewPageRequestWithFilter(1, types.DefaultPageSize, nil)
	}

	filter := types.NewQueryFilter()
	if f := pageRequest.GetFilter(); !f.IsEmpty() {
		for _, c := range f.Conditions {
			if !isFilterColumn(c.Column) || c.Value == nil || c.Value == "" {
				continue
			}
			filter.Eq(c.Column, c.Value)
		}
	}

	req := types.NewPageRequest(pageRequest.GetPage(), pageRequest.GetPageSize(), filter, DefaultOrders)
	result, err := page[models.FeedbackEvent](ctx, r.db, req)
	if err != nil {
		return nil, classify("list", "", err)
	}
	return result, nil
}

func (r *feedbackRepositoryImpl) Update(ctx context.Context, id string, updates map[string]interface{}) (int64, error) {
	if len(updates) == 0 {
		return 0, apperrors.Validation("no valid fields to update")
	}

	columns := make([]string, 0, len(updates))
	for col := range updates {
		if _, ok := validation.MutableField(col); !ok {
			return 0, apperrors.Validation("%s is not an updatable field", col)
		}
		columns = append(columns, col)
	}
	sort.Strings(columns)

	query := r.db.NewUpdate().Model((*models.FeedbackEvent)(nil))
	for _, col := range columns {
		query = query.Set("? = ?", bun.Ident(col), updates[col])
	}
	res, err := query.Where("? = ?", bun.Ident("feedback_id"), id).Exec(ctx)
	if err != nil {
		return 0, classify("update", id, err)
	}
	return rowsAffected(res)
}

func (r *feedbackRepositoryImpl) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*models.FeedbackEvent)(nil)).
		Where("? = ?", bun.Ident("feedback_id"), id).
		Exec(ctx)
	if err != nil {
		return 0, classify("delete", id, err)
	}
	return rowsAffected(res)
}

func (r *feedbackRepositoryImpl) Ping(ctx context.Context) error {
	var one int
	if err := r.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return apperrors.StoreUnavailable("ping", err)
	}
	return nil
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.Store("rows affected", err)
	}
	return n, nil
}

func isFilterColumn(col string) bool {
	for _, c := range validation.FilterColumns {
		if c == col {
			return true
		}
	}
	return false
}

// classify maps a driver error onto the apperrors taxonomy.
func classify(op, id string, err error) error {
	if ok, kind := database.IsSqlError(err); ok && kind == database.DuplicateKeyErr {
		return apperrors.DuplicateKey(entityName, id, err)
	}
	if database.IsConnectionError(err) {
		return apperrors.StoreUnavailable(op, err)
	}
	return apperrors.Store(op, fmt.Errorf("%s %s: %w", op, entityName, err))
}
