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

	"github.com/tomoncle/feedback/types"
	"github.com/uptrace/bun"
)

// page runs a count query and then the page query for T. The two statements
// are not wrapped in a transaction, so total may differ from what a later
// page observes under concurrent writes.
func page[T any](ctx context.Context, db bun.IDB, pageRequest *types.PageRequest) (*types.Pagination[T], error) {
	var entities []*T
	query := db.NewSelect().Model(&entities)
	if filter := pageRequest.GetFilter(); !filter.IsEmpty() {
		for _, c := range filter.Conditions {
			query = query.Where("? = ?", bun.Ident(c.Column), c.Value)
		}
	}

	pagination := types.NewDefaultPagination[T](pageRequest.GetPage(), pageRequest.GetPageSize())
	total, err := query.Count(ctx)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return pagination, nil
	}

	err = query.
		Offset(pageRequest.GetOffset()).
		Limit(pageRequest.GetPageSize()).
		Order(pageRequest.GetOrders()...).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	if entities != nil {
		pagination.Items = entities
	}
	return pagination, nil
}
