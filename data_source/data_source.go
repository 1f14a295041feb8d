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

// Package datasource provides a data source answering bar chart queries for
// live sessions.
package datasource

import (
	"context"
	"fmt"

	"github.com/ilhamster/barviz/layout"
	"github.com/ilhamster/barviz/session"
	"github.com/ilhamster/barviz/util"
	"github.com/ilhamster/barviz/visual"
)

const (
	chartQuery          = "barviz.chart"
	selectionTableQuery = "barviz.selection_table"
	settingsFieldsQuery = "barviz.settings_fields"

	sessionIDKey      = "session_id"
	viewportWidthKey  = "viewport_width"
	viewportHeightKey = "viewport_height"
)

// SessionFetcher describes types that look live sessions up by ID.
type SessionFetcher interface {
	Get(id string) (*session.Session, bool)
}

// DataSource implements querydispatcher.dataSource for bar chart sessions.
type DataSource struct {
	sessions SessionFetcher
}

// New returns a new DataSource serving the sessions in sessions.
func New(sessions SessionFetcher) *DataSource {
	return &DataSource{
		sessions: sessions,
	}
}

// SupportedDataSeriesQueries returns the DataSeriesRequest query names
// supported by DataSource.
func (ds *DataSource) SupportedDataSeriesQueries() []string {
	return []string{
		chartQuery,
		selectionTableQuery,
		settingsFieldsQuery,
	}
}

// viewportFromGlobalFilters returns the viewport requested in the provided
// global filters, if both of its dimensions are present.
func viewportFromGlobalFilters(globalFilters map[string]*util.V) (layout.Viewport, bool, error) {
	widthVal, hasWidth := globalFilters[viewportWidthKey]
	heightVal, hasHeight := globalFilters[viewportHeightKey]
	if !hasWidth && !hasHeight {
		return layout.Viewport{}, false, nil
	}
	if !hasWidth || !hasHeight {
		return layout.Viewport{}, false, fmt.Errorf("filter options '%s' and '%s' must be provided together", viewportWidthKey, viewportHeightKey)
	}
	width, err := util.ExpectDoubleValue(widthVal)
	if err != nil {
		return layout.Viewport{}, false, err
	}
	height, err := util.ExpectDoubleValue(heightVal)
	if err != nil {
		return layout.Viewport{}, false, err
	}
	return layout.Viewport{Width: width, Height: height}, true, nil
}

// HandleDataSeriesRequests handles the provided set of DataSeriesRequests, with
// the provided global filters.  It assembles its responses in the provided
// DataResponseBuilder.  Each request is rendered on the owning session's
// goroutine.
func (ds *DataSource) HandleDataSeriesRequests(ctx context.Context, globalFilters map[string]*util.V, drb *util.DataResponseBuilder, reqs []*util.DataSeriesRequest) error {
	// Pull the session ID from the global filters.
	sessionIDVal, ok := globalFilters[sessionIDKey]
	if !ok {
		return fmt.Errorf("missing required filter option '%s'", sessionIDKey)
	}
	sessionID, err := util.ExpectStringValue(sessionIDVal)
	if err != nil {
		return fmt.Errorf("required filter option '%s' must be a string", sessionIDKey)
	}
	sess, ok := ds.sessions.Get(sessionID)
	if !ok {
		return fmt.Errorf("no session '%s'", sessionID)
	}
	vp, resize, err := viewportFromGlobalFilters(globalFilters)
	if err != nil {
		return err
	}
	if resize {
		if err := sess.Resize(ctx, vp); err != nil {
			return err
		}
	}
	for _, req := range reqs {
		series := drb.DataSeries(req)
		err := sess.Do(ctx, func(v *visual.Visual) error {
			switch req.QueryName {
			case chartQuery:
				return v.Render(series)
			case selectionTableQuery:
				return v.RenderSelection(series)
			case settingsFieldsQuery:
				v.RenderSettingsFields(series)
				return nil
			default:
				return fmt.Errorf("unsupported data query")
			}
		})
		if err != nil {
			return fmt.Errorf("error handling data query %s: %w", req.QueryName, err)
		}
	}
	return nil
}
