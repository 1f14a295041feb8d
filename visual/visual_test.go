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

package visual

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	datapoint "github.com/ilhamster/barviz/data_point"
	dataview "github.com/ilhamster/barviz/data_view"
	"github.com/ilhamster/barviz/layout"
	"github.com/ilhamster/barviz/persistence"
	"github.com/ilhamster/barviz/selection"
	"github.com/ilhamster/barviz/settings"
	settingsstore "github.com/ilhamster/barviz/settings_store"
	"github.com/ilhamster/barviz/util"
)

var viewport = layout.Viewport{Width: 400, Height: 100}

func bare() *settings.Settings {
	s := settings.Default()
	s.ValueAxis.Show = false
	s.CategoryAxis.Show = false
	s.CategoryAxis.PaddingRatio = 0
	s.Legend.Show = false
	s.SmallMultiple.CellPaddingPx = 0
	s.SmallMultiple.ShowTitles = false
	return s
}

func sales(regions ...string) *dataview.Table {
	t := &dataview.Table{
		Name: "sales",
		Columns: []dataview.Column{
			{Role: dataview.CategoryRole, Name: "Region"},
			{Role: dataview.ValueRole, Name: "Sales"},
		},
	}
	for idx, r := range regions {
		t.Rows = append(t.Rows, []any{r, float64(idx + 1)})
	}
	return t
}

func facetedSales() *dataview.Table {
	return &dataview.Table{
		Name: "faceted",
		Columns: []dataview.Column{
			{Role: dataview.ColumnByRole, Name: "Year"},
			{Role: dataview.CategoryRole, Name: "Region"},
			{Role: dataview.ValueRole, Name: "Sales"},
		},
		Rows: [][]any{
			{"2023", "a", 1.0},
			{"2023", "b", 2.0},
			{"2024", "a", 3.0},
		},
	}
}

func identity(region string) string {
	return datapoint.Identity{Measure: "Sales", Category: region}.Key()
}

func newVisual(t *testing.T, store settingsstore.Store) *Visual {
	t.Helper()
	return New(Options{ID: "v", Settings: bare(), Store: store})
}

func update(t *testing.T, v *Visual, tbl *dataview.Table) {
	t.Helper()
	if err := v.Update(context.Background(), tbl, viewport); err != nil {
		t.Fatalf("Update() failed: %s", err)
	}
}

func clickPoint(t *testing.T, v *Visual, index int, ctrl bool) {
	t.Helper()
	for _, el := range v.Frame().Elements {
		if el.Index != index {
			continue
		}
		x, y := (el.Bounds.Left+el.Bounds.Right)/2, (el.Bounds.Top+el.Bounds.Bottom)/2
		for _, typ := range []selection.EventType{selection.MouseDown, selection.MouseUp} {
			if err := v.HandleEvent(context.Background(), selection.Event{Type: typ, X: x, Y: y, Ctrl: ctrl}); err != nil {
				t.Fatalf("HandleEvent() failed: %s", err)
			}
		}
		return
	}
	t.Fatalf("point %d is not bound", index)
}

func selectedRegions(v *Visual) []string {
	var ret []string
	for _, p := range v.Data().Points {
		if p.Selected {
			ret = append(ret, p.CategoryKey)
		}
	}
	return ret
}

// count returns how many datums in the series have property key set to want,
// as pretty-printed.
func count(data *util.Data, key, want string) int {
	var walk func(d *util.Datum) int
	walk = func(d *util.Datum) int {
		ret := 0
		for k, v := range d.Properties {
			if data.StringTable[k] == key && v.PrettyPrint(data.StringTable) == want {
				ret++
			}
		}
		for _, child := range d.Children {
			ret += walk(child)
		}
		return ret
	}
	return walk(data.DataSeries[0].Root)
}

func render(t *testing.T, build func(db util.DataBuilder) error) *util.Data {
	t.Helper()
	drb := util.NewDataResponseBuilder()
	if err := build(drb.DataSeries(&util.DataSeriesRequest{SeriesName: "s"})); err != nil {
		t.Fatalf("render failed: %s", err)
	}
	data, err := drb.Data()
	if err != nil {
		t.Fatalf("Data() failed: %s", err)
	}
	return data
}

func TestRestoresPersistedSelectionOnce(t *testing.T) {
	ctx := context.Background()
	store := settingsstore.NewMemoryStore()
	var saved []*datapoint.VisualDataPoint
	for _, r := range []string{"1", "3", "5"} {
		saved = append(saved, &datapoint.VisualDataPoint{Identity: datapoint.Identity{Measure: "Sales", Category: r}})
	}
	if err := persistence.New(store, "v", nil).Save(ctx, saved); err != nil {
		t.Fatalf("Save() failed: %s", err)
	}
	v := newVisual(t, store)
	update(t, v, sales("1", "2", "3", "4", "5"))
	if diff := cmp.Diff([]string{"1", "3", "5"}, selectedRegions(v)); diff != "" {
		t.Errorf("restored selection = diff (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{identity("1"), identity("3"), identity("5")}, v.Selection().Keys()); diff != "" {
		t.Errorf("host selection = diff (-want +got):\n%s", diff)
	}
	if got := v.Engine().Mark(0); got != selection.Selected {
		t.Errorf("engine mark of a restored point = %s, want selected", got)
	}

	// Later updates follow the host, not the persisted settings.
	clickPoint(t, v, 1, false)
	update(t, v, sales("1", "2", "3", "4", "5"))
	if diff := cmp.Diff([]string{"2"}, selectedRegions(v)); diff != "" {
		t.Errorf("selection after a second update = diff (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{identity("2")}, persistence.Keys(persistence.New(store, "v", nil).Persisted(ctx))); diff != "" {
		t.Errorf("persisted selection = diff (-want +got):\n%s", diff)
	}
}

func TestSwitchesEngines(t *testing.T) {
	v := newVisual(t, nil)
	if err := v.HandleEvent(context.Background(), selection.Event{Type: selection.MouseUp}); err != nil {
		t.Errorf("HandleEvent() before any update = %v, want nil", err)
	}
	update(t, v, sales("a", "b"))
	if _, ok := v.Engine().(*selection.SingleChartEngine); !ok {
		t.Fatalf("Engine() = %T, want a single chart engine", v.Engine())
	}
	single := v.Engine()
	clickPoint(t, v, 0, false)

	update(t, v, facetedSales())
	if _, ok := v.Engine().(*selection.SmallMultipleEngine); !ok {
		t.Fatalf("Engine() = %T, want a small multiple engine", v.Engine())
	}
	// The single chart engine no longer reacts to events.
	if err := single.HandleEvent(context.Background(), selection.Event{Type: selection.MouseDown, X: 10, Y: 99}); err != nil {
		t.Errorf("disabled engine HandleEvent() = %v", err)
	}
	if _, ok := single.Lasso(); ok {
		t.Errorf("disabled engine started a gesture")
	}
	clickPoint(t, v, 2, false)
	if diff := cmp.Diff([]string{"a"}, selectedRegions(v)); diff != "" {
		t.Errorf("small multiple selection = diff (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{datapoint.Identity{Measure: "Sales", Category: "a", Column: "2024"}.Key()}, v.Selection().Keys()); diff != "" {
		t.Errorf("host selection = diff (-want +got):\n%s", diff)
	}

	update(t, v, sales("a", "b"))
	if v.Engine() != single {
		t.Errorf("Engine() did not switch back to the single chart engine")
	}
}

func TestWheelScrolls(t *testing.T) {
	v := newVisual(t, nil)
	s := bare()
	s.CategoryAxis.MinCategoryWidthPx = 100
	if err := v.UpdateSettings(s); err != nil {
		t.Fatalf("UpdateSettings() failed: %s", err)
	}
	update(t, v, sales("a", "b", "c", "d", "e", "f"))
	if got := v.Frame().MaxScroll; got != 2 {
		t.Fatalf("MaxScroll = %d, want 2", got)
	}
	ctx := context.Background()
	for _, test := range []struct {
		delta            float64
		wantScroll       int
		wantFirstVisible int
	}{
		{1, 1, 1},
		{3, 2, 2},
		{1, 2, 2},
		{-1, 1, 1},
		{0, 1, 1},
		{-5, 0, 0},
	} {
		if err := v.HandleEvent(ctx, selection.Event{Type: selection.Wheel, WheelDelta: test.delta}); err != nil {
			t.Fatalf("HandleEvent() failed: %s", err)
		}
		if got := v.Frame().Scroll; got != test.wantScroll {
			t.Errorf("after wheel %v, Scroll = %d, want %d", test.delta, got, test.wantScroll)
		}
		if got := v.Frame().FirstVisible; got != test.wantFirstVisible {
			t.Errorf("after wheel %v, FirstVisible = %d, want %d", test.delta, got, test.wantFirstVisible)
		}
	}
}

func TestRender(t *testing.T) {
	v := newVisual(t, nil)
	if err := v.Render(util.NewDataResponseBuilder().DataSeries(&util.DataSeriesRequest{})); !errors.Is(err, ErrNotUpdated) {
		t.Errorf("Render() before any update = %v, want %v", err, ErrNotUpdated)
	}
	update(t, v, sales("a", "b", "c"))
	clickPoint(t, v, 1, false)
	data := render(t, v.Render)
	if got := count(data, "bar_chart_data_type", "'bar_chart_bar'"); got != 3 {
		t.Errorf("rendered %d bars, want 3", got)
	}
	if got := count(data, "bar_chart_bar_selected", "true"); got != 1 {
		t.Errorf("rendered %d selected bars, want 1", got)
	}
	if got := count(data, "bar_chart_bar_identity", fmt.Sprintf("'%s'", identity("b"))); got != 1 {
		t.Errorf("rendered %d bars for b, want 1", got)
	}
	if got := count(data, "style_fill-opacity", "'0.4'"); got != 2 {
		t.Errorf("rendered %d dimmed bars, want 2", got)
	}

	// A lasso in progress is rendered.
	ctx := context.Background()
	for _, ev := range []selection.Event{
		{Type: selection.MouseDown, X: 10, Y: 99},
		{Type: selection.MouseMove, X: 390, Y: 99},
	} {
		if err := v.HandleEvent(ctx, ev); err != nil {
			t.Fatalf("HandleEvent() failed: %s", err)
		}
	}
	data = render(t, v.Render)
	if got := count(data, "bar_chart_data_type", "'bar_chart_lasso'"); got != 1 {
		t.Errorf("rendered %d lassos, want 1", got)
	}
	if got := count(data, "bar_chart_bar_selected", "true"); got != 3 {
		t.Errorf("rendered %d provisionally selected bars, want 3", got)
	}
}

func TestRenderSmallMultiple(t *testing.T) {
	v := newVisual(t, nil)
	s := bare()
	s.SmallMultiple.SharedYScale = false
	s.SmallMultiple.ShowTitles = true
	if err := v.UpdateSettings(s); err != nil {
		t.Fatalf("UpdateSettings() failed: %s", err)
	}
	update(t, v, facetedSales())
	data := render(t, v.Render)
	if got := count(data, "bar_chart_data_type", "'bar_chart_facet'"); got != 2 {
		t.Errorf("rendered %d facets, want 2", got)
	}
	if got := count(data, "bar_chart_facet_title", "'2024'"); got != 1 {
		t.Errorf("rendered %d facets titled 2024, want 1", got)
	}
	if got := count(data, "bar_chart_scroll", "0"); got != 0 {
		t.Errorf("small multiple carries a scroll position")
	}
}

func TestRenderSelection(t *testing.T) {
	v := newVisual(t, nil)
	update(t, v, sales("a", "b", "c"))
	clickPoint(t, v, 0, false)
	clickPoint(t, v, 2, true)
	data := render(t, v.RenderSelection)
	rows := data.DataSeries[0].Root.Children[1:]
	if len(rows) != 2 {
		t.Fatalf("selection table has %d rows, want 2", len(rows))
	}
	if got := count(data, "table_row_key", fmt.Sprintf("'%s'", identity("c"))); got != 1 {
		t.Errorf("selection table has %d rows for c, want 1", got)
	}
}

func TestSettingsFields(t *testing.T) {
	v := newVisual(t, nil)
	update(t, v, facetedSales())
	fields := map[string]bool{}
	for _, f := range v.SettingsFields() {
		fields[f] = true
	}
	if !fields["small_multiple.layout"] || fields["legend.show"] {
		t.Errorf("SettingsFields() = %v, want small multiple fields and no legend fields", v.SettingsFields())
	}
	bad := bare()
	bad.Interaction.WheelStep = 0
	if err := v.UpdateSettings(bad); err == nil {
		t.Errorf("UpdateSettings() with a zero wheel step should fail")
	}
}

func TestLogsNameVisualOnce(t *testing.T) {
	store := settingsstore.NewMemoryStore()
	if err := store.PersistProperties(context.Background(), "v", []settingsstore.Change{
		{Object: persistence.Object, Property: persistence.Property, Value: "not json"},
	}); err != nil {
		t.Fatalf("PersistProperties() failed: %s", err)
	}
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	v := New(Options{ID: "v", Settings: bare(), Store: store, Logger: logger})
	update(t, v, sales("a", "b"))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) == 0 || lines[0] == "" {
		t.Fatalf("nothing was logged")
	}
	for _, line := range lines {
		if got := strings.Count(line, "visual=v"); got != 1 {
			t.Errorf("log line %q names the visual %d times, want 1", line, got)
		}
	}
}
