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

package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru"
	dataview "github.com/ilhamster/barviz/data_view"
	"github.com/ilhamster/barviz/handlers"
)

// datasetFetcher reads CSV datasets from under a root directory, caching the
// most recently used ones.
type datasetFetcher struct {
	datasetRoot string
	lru         *lru.Cache
}

func newDatasetFetcher(datasetRoot string, cap int) (*datasetFetcher, error) {
	cache, err := lru.New(cap)
	if err != nil {
		return nil, err
	}
	return &datasetFetcher{
		datasetRoot: datasetRoot,
		lru:         cache,
	}, nil
}

// Fetch returns the dataset named by dataset, a path relative to the
// receiver's root.
func (df *datasetFetcher) Fetch(ctx context.Context, dataset string) (*dataview.Table, error) {
	if !filepath.IsLocal(dataset) {
		return nil, handlers.NewStatusError(http.StatusBadRequest, "dataset '%s' is outside the dataset root", dataset)
	}
	tableIf, ok := df.lru.Get(dataset)
	if ok {
		table, ok := tableIf.(*dataview.Table)
		if !ok {
			return nil, fmt.Errorf("cached dataset '%s' wasn't a table", dataset)
		}
		return table, nil
	}
	file, err := os.Open(filepath.Join(df.datasetRoot, dataset))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, handlers.NewStatusError(http.StatusNotFound, "no dataset '%s'", dataset)
	}
	if err != nil {
		return nil, err
	}
	// ReadCSV closes the file.
	table, err := dataview.ReadCSV(dataset, file)
	if err != nil {
		return nil, handlers.NewStatusError(http.StatusUnprocessableEntity, "%s", err)
	}
	df.lru.Add(dataset, table)
	return table, nil
}
