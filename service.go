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

// Package feedback records and retrieves user feedback events tied to music
// recommendation sessions.
package feedback

import (
	"context"
	"errors"

	"github.com/tomoncle/feedback/apperrors"
	"github.com/tomoncle/feedback/database"
	"github.com/tomoncle/feedback/models"
	"github.com/tomoncle/feedback/repository"
	"github.com/tomoncle/feedback/types"
	"github.com/tomoncle/feedback/validation"
)

// Version is reported by the HTTP root and /version endpoints.
const Version = "1.0.0"

var errDatabaseNotInitialized = errors.New("database not initialized")

// ListQuery carries raw list parameters. Zero Page and PageSize select the
// defaults.
type ListQuery struct {
	Filters  map[string]string
	Page     int
	PageSize int
}

type Service interface {
	// Create validates payload, stores a new event and returns its identifier.
	Create(ctx context.Context, payload types.Payload) (string, error)

	// Get returns the event with the given identifier.
	Get(ctx context.Context, id string) (*models.FeedbackEvent, error)

	// List returns one page of events matching the query filters.
	List(ctx context.Context, query ListQuery) (*types.Pagination[models.FeedbackEvent], error)

	// Update applies the whitelisted fields of payload to an existing event.
	Update(ctx context.Context, id string, payload types.Payload) error

	// Delete removes an event.
	Delete(ctx context.Context, id string) error

	// Health checks store connectivity.
	Health(ctx context.Context) error
}

// baseServiceImpl uses repo when one was given; otherwise every call resolves
// the current global pool, so a reconnect is picked up immediately.
type baseServiceImpl struct {
	repo repository.FeedbackRepository
}

// NewService returns a Service backed by repo.
func NewService(repo repository.FeedbackRepository) Service {
	return &baseServiceImpl{repo: repo}
}

// NewDefaultService returns a Service over the global database connection.
func NewDefaultService() Service {
	return &baseServiceImpl{}
}

func (s *baseServiceImpl) feedbackRepo() (repository.FeedbackRepository, error) {
	if s.repo != nil {
		return s.repo, nil
	}
	db := database.GetDB()
	if db == nil {
		return nil, apperrors.StoreUnavailable("connect", errDatabaseNotInitialized)
	}
	return repository.NewFeedbackRepository(db), nil
}

func (s *baseServiceImpl) Create(ctx context.Context, payload types.Payload) (string, error) {
	event, err := validation.PrepareCreate(payload)
	if err != nil {
		return "", err
	}
	repo, err := s.feedbackRepo()
	if err != nil {
		return "", err
	}
	return repo.Create(ctx, event)
}

func (s *baseServiceImpl) Get(ctx context.Context, id string) (*models.FeedbackEvent, error) {
	id, err := validation.NormalizeIdentifier(id)
	if err != nil {
		return nil, err
	}
	repo, err := s.feedbackRepo()
	if err != nil {
		return nil, err
	}
	return repo.Get(ctx, id)
}

func (s *baseServiceImpl) List(ctx context.Context, query ListQuery) (*types.Pagination[models.FeedbackEvent], error) {
	if err := validation.ValidateFilters(query.Filters); err != nil {
		return nil, err
	}
	filter := types.NewQueryFilter()
	for _, col := range validation.FilterColumns {
		if v := query.Filters[col]; v != "" {
			filter.Eq(col, v)
		}
	}

	page := query.Page
	if page == 0 {
		page = 1
	}
	repo, err := s.feedbackRepo()
	if err != nil {
		return nil, err
	}
	return repo.List(ctx, types.NewPageRequest(page, query.PageSize, filter, repository.DefaultOrders))
}

func (s *baseServiceImpl) Update(ctx context.Context, id string, payload types.Payload) error {
	id, err := validation.NormalizeIdentifier(id)
	if err != nil {
		return err
	}
	updates, err := validation.PrepareUpdate(payload)
	if err != nil {
		return err
	}
	repo, err := s.feedbackRepo()
	if err != nil {
		return err
	}
	n, err := repo.Update(ctx, id, updates)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFound("feedback event", id)
	}
	return nil
}

func (s *baseServiceImpl) Delete(ctx context.Context, id string) error {
	id, err := validation.NormalizeIdentifier(id)
	if err != nil {
		return err
	}
	repo, err := s.feedbackRepo()
	if err != nil {
		return err
	}
	n, err := repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFound("feedback event", id)
	}
	return nil
}

// Health pings the store. Over the global connection it goes through the
// database manager's health check.
func (s *baseServiceImpl) Health(ctx context.Context) error {
	if s.repo != nil {
		return s.repo.Ping(ctx)
	}
	if database.GetDB() == nil {
		return apperrors.StoreUnavailable("ping", errDatabaseNotInitialized)
	}
	if status := database.GetHealthStatus(ctx); !status.Healthy {
		return apperrors.StoreUnavailable("ping", errors.New(status.LastError))
	}
	return nil
}
