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

	"github.com/tomoncle/feedback/models"
	"github.com/tomoncle/feedback/types"
)

// FeedbackRepository is the data access contract for feedback events.
type FeedbackRepository interface {
	// Create inserts the event, assigning a UUID when FeedbackID is empty,
	// and returns the stored identifier.
	Create(ctx context.Context, event *models.FeedbackEvent) (string, error)

	// Get returns the event with the given identifier.
	Get(ctx context.Context, id string) (*models.FeedbackEvent, error)

	// List returns one page of events matching the request filter, newest
	// first, with the total count of matches.
	List(ctx context.Context, page *types.PageRequest) (*types.Pagination[models.FeedbackEvent], error)

	// Update sets the given whitelisted columns and returns affected rows.
	Update(ctx context.Context, id string, updates map[string]interface{}) (int64, error)

	// Delete removes the event and returns affected rows.
	Delete(ctx context.Context, id string) (int64, error)

	// Ping performs a trivial round trip to the store.
	Ping(ctx context.Context) error
}

// DefaultOrders sorts newest first; feedback_id breaks created_at ties.
var DefaultOrders = []string{"created_at DESC", "feedback_id ASC"}
