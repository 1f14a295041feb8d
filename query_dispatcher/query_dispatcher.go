/*
	Copyright 2025 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

// Package querydispatcher provides QueryDispatcher, a type for multiplexing
// multiple backend data sources written in Go.
package querydispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ilhamster/barviz/util"
	"golang.org/x/sync/errgroup"
)

// dataSource represents a single source of visual data.  dataSource instances
// must support concurrent HandleDataSeriesRequests calls.
type dataSource interface {
	// SupportedDataSeriesQueries returns the list of DataSeriesRequest query
	// names this dataSource is able to handle.  Query names should be unique
	// to their dataSource, e.g. by prefixing them with the source's name.
	SupportedDataSeriesQueries() []string
	// HandleDataSeriesRequests handles a set of DataSeriesRequests with the
	// supplied global filters.  dataSource implementations should use the
	// provided DataResponseBuilder to add and populate a new DataSeries.  Any
	// returned error will cancel the entire DataRequest and surface to the
	// client.
	HandleDataSeriesRequests(ctx context.Context, globalFilters map[string]*util.V, drb *util.DataResponseBuilder, reqs []*util.DataSeriesRequest) error
}

// QueryDispatcher multiplexes multiple data query handlers, allowing common
// queries to be satisfied by a variety of data providers.
type QueryDispatcher struct {
	dataSources []dataSource
	// Maps data series query names to indices (in dataSources) of the
	// dataSources that handle those queries.
	dataSeriesQueryHandlers map[string]int
	logger                  *slog.Logger
}

// New returns a *QueryDispatcher wrapping the provided dataSources.
func New(dss ...dataSource) (*QueryDispatcher, error) {
	qd := &QueryDispatcher{
		dataSeriesQueryHandlers: map[string]int{},
		logger:                  slog.Default(),
	}
	for dsIdx, ds := range dss {
		qd.dataSources = append(qd.dataSources, ds)
		for _, queryName := range ds.SupportedDataSeriesQueries() {
			if _, ok := qd.dataSeriesQueryHandlers[queryName]; ok {
				return nil, fmt.Errorf(
					"multiple dataSources handle data query `%s`", queryName)
			}
			qd.dataSeriesQueryHandlers[queryName] = dsIdx
		}
	}
	return qd, nil
}

// WithLogger sets the logger request timings are reported to.
func (qd *QueryDispatcher) WithLogger(logger *slog.Logger) *QueryDispatcher {
	if logger != nil {
		qd.logger = logger
	}
	return qd
}

// HandleDataRequest distributes the provided DataRequest's constituent
// DataSeriesRequests to their appropriate dataSources for processing, then
// assembles the returned DataSeries into a single Data response.
func (qd *QueryDispatcher) HandleDataRequest(ctx context.Context, req *util.DataRequest) (*util.Data, error) {
	start := time.Now()
	queryNames := make([]string, 0, len(req.SeriesRequests))
	drb := util.NewDataResponseBuilder()
	// A mapping from dataSource index to a set of DataRequests that source can
	// handle.
	groupedReqs := map[int][]*util.DataSeriesRequest{}
	for _, seriesReq := range req.SeriesRequests {
		dsIdx, ok := qd.dataSeriesQueryHandlers[seriesReq.QueryName]
		if !ok {
			return nil, fmt.Errorf("unsupported data query `%s`", seriesReq.QueryName)
		}
		groupedReqs[dsIdx] = append(groupedReqs[dsIdx], seriesReq)
		queryNames = append(queryNames, seriesReq.QueryName)
	}
	errg, gctx := errgroup.WithContext(ctx)
	for dsIdx, seriesReqs := range groupedReqs {
		seriesReqs := seriesReqs
		ds := qd.dataSources[dsIdx]
		errg.Go(func() error {
			return ds.HandleDataSeriesRequests(gctx, req.GlobalFilters, drb, seriesReqs)
		})
	}
	if err := errg.Wait(); err != nil {
		qd.logger.WarnContext(ctx, "data request failed",
			"queries", strings.Join(queryNames, ", "), "err", err)
		return nil, err
	}
	qd.logger.DebugContext(ctx, "handled data request",
		"queries", strings.Join(queryNames, ", "), "elapsed", time.Since(start))
	return drb.Data()
}
