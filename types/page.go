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

package types

import "math"

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
	// MaxPage keeps (page-1)*MaxPageSize within int.
	MaxPage = math.MaxInt / MaxPageSize
)

// Condition is a single column equality match.
type Condition struct {
	Column string
	Value  interface{}
}

// QueryFilter is a conjunction of equality conditions, kept in insertion order.
type QueryFilter struct {
	Conditions []Condition
}

// NewQueryFilter creates an empty filter.
func NewQueryFilter() *QueryFilter {
	return &QueryFilter{Conditions: make([]Condition, 0)}
}

// Eq appends column = value to the filter.
func (f *QueryFilter) Eq(column string, value interface{}) *QueryFilter {
	f.Conditions = append(f.Conditions, Condition{Column: column, Value: value})
	return f
}

func (f *QueryFilter) IsEmpty() bool {
	return f == nil || len(f.Conditions) == 0
}

// PageRequest describes pagination, optional filter, and ordering.
type PageRequest struct {
	page     int
	pageSize int
	filter   *QueryFilter
	orders   []string // "created_at DESC", "feedback_id ASC"
}

// GetPageSize returns the page size clamped to [1, MaxPageSize]; zero means
// the default.
func (p *PageRequest) GetPageSize() int {
	switch {
	case p.pageSize == 0:
		p.pageSize = DefaultPageSize
	case p.pageSize < 1:
		p.pageSize = 1
	case p.pageSize > MaxPageSize:
		p.pageSize = MaxPageSize
	}
	return p.pageSize
}

// GetPage returns the page clamped to [1, MaxPage].
func (p *PageRequest) GetPage() int {
	switch {
	case p.page < 1:
		p.page = 1
	case p.page > MaxPage:
		p.page = MaxPage
	}
	return p.page
}

func (p *PageRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

func (p *PageRequest) GetFilter() *QueryFilter {
	return p.filter
}

func (p *PageRequest) GetOrders() []string {
	return p.orders
}

// NewPageRequest constructs a PageRequest with filter and order settings.
func NewPageRequest(page int, pageSize int, filter *QueryFilter, orders []string) *PageRequest {
	return &PageRequest{page, pageSize, filter, orders}
}

// NewPageRequestWithFilter constructs a PageRequest with a filter only.
func NewPageRequestWithFilter(page int, pageSize int, filter *QueryFilter) *PageRequest {
	return NewPageRequest(page, pageSize, filter, make([]string, 0))
}

// Pagination holds one page of items along with the total match count.
type Pagination[T any] struct {
	Items    []*T `json:"data"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	Total    int  `json:"total"`
}

// NewDefaultPagination constructs an empty pagination container.
func NewDefaultPagination[T any](page int, pageSize int) *Pagination[T] {
	return &Pagination[T]{Items: make([]*T, 0), Page: page, PageSize: pageSize}
}

