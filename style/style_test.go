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

package style

import (
	"testing"

	testutil "github.com/ilhamster/barviz/test_util"
	"github.com/ilhamster/barviz/util"
)

func TestStyleDefine(t *testing.T) {
	for _, test := range []struct {
		description string
		style       *Style
		wantUpdates []util.PropertyUpdate
	}{{
		description: "empty",
		style:       New(),
	}, {
		description: "lasso rectangle",
		style: New().
			With(Fill, "#01b8aa").
			With(FillOpacity, Opacity(0.1)).
			With(StrokeWidth, Px(1)),
		wantUpdates: []util.PropertyUpdate{
			util.StringProperty("style_fill", "#01b8aa"),
			util.StringProperty("style_fill-opacity", "0.1"),
			util.StringProperty("style_stroke-width", "1.00px"),
		},
	}, {
		description: "later values overwrite",
		style:       WithFillOpacity(0.4).With(FillOpacity, Opacity(1)),
		wantUpdates: []util.PropertyUpdate{
			util.StringProperty("style_fill-opacity", "1"),
		},
	}} {
		t.Run(test.description, func(t *testing.T) {
			if msg, failed := testutil.NewUpdateComparator().
				WithTestUpdates(test.style.Define()).
				WithWantUpdates(test.wantUpdates...).
				Compare(t); failed {
				t.Fatal(msg)
			}
		})
	}
}

func TestOpacity(t *testing.T) {
	for _, test := range []struct {
		val  float64
		want string
	}{
		{0.4, "0.4"},
		{1, "1"},
		{-0.5, "0"},
		{2, "1"},
	} {
		if got := Opacity(test.val); got != test.want {
			t.Errorf("Opacity(%v) = %q, want %q", test.val, got, test.want)
		}
	}
}

func TestGet(t *testing.T) {
	s := New().With(Stroke, "black")
	if got, ok := s.Get(Stroke); !ok || got != "black" {
		t.Errorf("Get(stroke) = %q, %t, want 'black', true", got, ok)
	}
	if _, ok := s.Get(Fill); ok {
		t.Errorf("Get(fill) should be unset")
	}
}
