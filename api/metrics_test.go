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


package api

import (
	"database/sql"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func openPool(t *testing.T, maxOpen int) *sql.DB {
	t.Helper()
	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(maxOpen)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func maxOpenConns(t *testing.T, reg *prometheus.Registry) (float64, bool) {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == "go_sql_max_open_connections" {
			return mf.GetMetric()[0].GetGauge().GetValue(), true
		}
	}
	return 0, false
}

func TestDBStatsCollectorFollowsReplacedPool(t *testing.T) {
	var current *sql.DB
	collector := NewDBStatsCollector("feedback", func() *sql.DB { return current })

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(collector))

	assert.Equal(t, 0, testutil.CollectAndCount(collector, "go_sql_max_open_connections"))
	_, found := maxOpenConns(t, reg)
	assert.False(t, found)

	current = openPool(t, 3)
	v, found := maxOpenConns(t, reg)
	require.True(t, found)
	assert.Equal(t, 3.0, v)

	require.NoError(t, current.Close())
	current = openPool(t, 7)
	v, found = maxOpenConns(t, reg)
	require.True(t, found)
	assert.Equal(t, 7.0, v)
}
