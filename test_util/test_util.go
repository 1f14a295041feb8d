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

// Package testutil provides helpers for testing barviz response construction.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ilhamster/barviz/util"
)

// UpdateComparator checks that a set of PropertyUpdates under test has the
// same effect on a datum as a set of expected PropertyUpdates.
type UpdateComparator struct {
	got, want []util.PropertyUpdate
}

// NewUpdateComparator returns an empty UpdateComparator.
func NewUpdateComparator() *UpdateComparator {
	return &UpdateComparator{}
}

// WithTestUpdates sets the PropertyUpdates under test.
func (uc *UpdateComparator) WithTestUpdates(got ...util.PropertyUpdate) *UpdateComparator {
	uc.got = got
	return uc
}

// WithWantUpdates sets the expected PropertyUpdates.
func (uc *UpdateComparator) WithWantUpdates(want ...util.PropertyUpdate) *UpdateComparator {
	uc.want = want
	return uc
}

// Compare applies both update sets to sibling datums and compares them.  It
// returns a diff message and true if they differ.  Property order and string
// table order are ignored.
func (uc *UpdateComparator) Compare(t *testing.T) (string, bool) {
	t.Helper()
	drb := util.NewDataResponseBuilder()
	series := drb.DataSeries(&util.DataSeriesRequest{})
	series.Child().With(uc.got...)
	series.Child().With(uc.want...)
	data, err := drb.Data()
	if err != nil {
		return fmt.Sprintf("failed to build data: %s", err), true
	}
	children := data.DataSeries[0].Root.Children
	if diff := cmp.Diff(
		children[1].PrettyPrint("", data.StringTable),
		children[0].PrettyPrint("", data.StringTable)); diff != "" {
		return fmt.Sprintf("Got series %s, diff (-want +got):\n%s",
			data.DataSeries[0].PrettyPrint("", data.StringTable), diff), true
	}
	return "", false
}

// TestDataBuilder assembles expected responses fluently in tests.
type TestDataBuilder interface {
	With(updates ...util.PropertyUpdate) TestDataBuilder
	Child() TestDataBuilder
	AndChild() TestDataBuilder
	Parent() TestDataBuilder
}

type testDataBuilder struct {
	db     util.DataBuilder
	parent *testDataBuilder
}

func (tdb *testDataBuilder) With(updates ...util.PropertyUpdate) TestDataBuilder {
	tdb.db.With(updates...)
	return tdb
}

func (tdb *testDataBuilder) Child() TestDataBuilder {
	return &testDataBuilder{
		db:     tdb.db.Child(),
		parent: tdb,
	}
}

// AndChild adds a sibling of the receiver, or a child if the receiver is the
// root.
func (tdb *testDataBuilder) AndChild() TestDataBuilder {
	if tdb.parent == nil {
		return tdb.Child()
	}
	return tdb.parent.Child()
}

// Parent returns the receiver's parent, or the receiver if it is the root.
func (tdb *testDataBuilder) Parent() TestDataBuilder {
	if tdb.parent == nil {
		return tdb
	}
	return tdb.parent
}

func buildSeries(t *testing.T, build any) *util.DataResponseBuilder {
	t.Helper()
	drb := util.NewDataResponseBuilder()
	root := drb.DataSeries(&util.DataSeriesRequest{})
	switch fn := build.(type) {
	case func(util.DataBuilder):
		fn(root)
	case func(TestDataBuilder):
		fn(&testDataBuilder{db: root})
	default:
		t.Fatalf("builder must be func(util.DataBuilder) or func(testutil.TestDataBuilder), got %T", build)
	}
	return drb
}

// CompareResponses builds a 'got' and a 'want' series with the provided
// callbacks, each a func(util.DataBuilder) or a func(TestDataBuilder), and
// reports any difference on t.
func CompareResponses(t *testing.T, buildGot any, buildWant any) error {
	t.Helper()
	gotData, err := buildSeries(t, buildGot).Data()
	if err != nil {
		return err
	}
	wantData, err := buildSeries(t, buildWant).Data()
	if err != nil {
		return err
	}
	if diff := cmp.Diff(wantData.PrettyPrint(), gotData.PrettyPrint()); diff != "" {
		t.Errorf("Got data %s, diff (-want +got):\n%s", gotData.PrettyPrint(), diff)
	}
	return nil
}
