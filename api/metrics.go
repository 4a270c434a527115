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
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "feedback",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "feedback",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})
)

// Metrics records request counts and latency keyed by the matched route
// template, so identifiers do not explode label cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

type dbStatsCollector struct {
	dbName string
	source func() *sql.DB
	descs  prometheus.Collector
}

// NewDBStatsCollector exports go_sql_* pool statistics for whatever pool
// source returns at scrape time, so a replaced pool is followed. Nothing is
// reported while source returns nil.
func NewDBStatsCollector(dbName string, source func() *sql.DB) prometheus.Collector {
	return &dbStatsCollector{
		dbName: dbName,
		source: source,
		descs:  collectors.NewDBStatsCollector(nil, dbName),
	}
}

func (c *dbStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	c.descs.Describe(ch)
}

func (c *dbStatsCollector) Collect(ch chan<- prometheus.Metric) {
	if db := c.source(); db != nil {
		collectors.NewDBStatsCollector(db, c.dbName).Collect(ch)
	}
}
