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

// Package util defines the wire vocabulary shared by the barviz service and its
// chart clients:
//
// V, a typed value (string, strings, integer, integers, double, or bool), with
// {type}Value constructors and Expect{type}Value accessors;
//
// Datum, DataSeries and Data, the string-table-compressed response tree;
//
// DataRequest and DataSeriesRequest, the client's query;
//
// DataResponseBuilder and DataBuilder, for assembling responses from
// PropertyUpdates.
package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
)

type valueType int

// Enumerated value types.  These are part of the wire format.
const (
	unsetValue valueType = iota
	StringValueType
	StringIndexValueType
	StringsValueType
	StringIndicesValueType
	IntegerValueType
	IntegersValueType
	DoubleValueType
	BoolValueType
)

// V is a single typed value in a request or response.
type V struct {
	V any
	T valueType
}

// PrettyPrint renders the receiver deterministically, resolving string indices
// through the provided string table.  Only for use in tests.
func (v *V) PrettyPrint(st []string) string {
	quote := func(strs []string) string {
		return "[ '" + strings.Join(strs, "', '") + "' ]"
	}
	var ret string
	var err error
	switch v.T {
	case unsetValue:
		return "unset"
	case StringValueType:
		var str string
		str, err = ExpectStringValue(v)
		ret = "'" + str + "'"
	case StringIndexValueType:
		var idx int64
		if idx, err = expectStringIndexValue(v); err == nil {
			ret = "'" + st[idx] + "'"
		}
	case StringsValueType:
		var strs []string
		strs, err = ExpectStringsValue(v)
		ret = quote(strs)
	case StringIndicesValueType:
		var idxs []int64
		if idxs, err = expectStringIndicesValue(v); err == nil {
			strs := make([]string, len(idxs))
			for i, idx := range idxs {
				strs[i] = st[idx]
			}
			ret = quote(strs)
		}
	case IntegerValueType:
		var i int64
		i, err = ExpectIntegerValue(v)
		ret = strconv.FormatInt(i, 10)
	case IntegersValueType:
		var ints []int64
		if ints, err = ExpectIntegersValue(v); err == nil {
			strs := make([]string, len(ints))
			for i, val := range ints {
				strs[i] = strconv.FormatInt(val, 10)
			}
			ret = "[ " + strings.Join(strs, ", ") + " ]"
		}
	case DoubleValueType:
		var d float64
		d, err = ExpectDoubleValue(v)
		ret = fmt.Sprintf("%.6f", d)
	case BoolValueType:
		var b bool
		b, err = ExpectBoolValue(v)
		ret = strconv.FormatBool(b)
	}
	if err != nil {
		return "error: " + err.Error()
	}
	return ret
}

// MarshalJSON encodes a V as the two-element array [type, value] to keep
// responses small.
func (v *V) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{v.T, v.V})
}

func (v *V) fromAny(got []any) error {
	if len(got) != 2 {
		return fmt.Errorf("value must be a [type, value] pair")
	}
	num, ok := got[0].(json.Number)
	if !ok {
		return fmt.Errorf("value type must be a number")
	}
	t, err := num.Int64()
	if err != nil {
		return err
	}
	v.T = valueType(t)
	raw := got[1]
	switch v.T {
	case StringIndexValueType, IntegerValueType:
		v.V, err = asInt(raw)
	case DoubleValueType:
		var n json.Number
		if n, ok = raw.(json.Number); !ok {
			return fmt.Errorf("expected a number")
		}
		v.V, err = n.Float64()
	case StringsValueType:
		items, ok := raw.([]any)
		if !ok {
			return fmt.Errorf("expected a string array")
		}
		strs := make([]string, len(items))
		for idx, item := range items {
			str, ok := item.(string)
			if !ok {
				return fmt.Errorf("expected a string array")
			}
			if strs[idx], err = url.QueryUnescape(str); err != nil {
				return err
			}
		}
		v.V = strs
	case StringIndicesValueType, IntegersValueType:
		items, ok := raw.([]any)
		if !ok {
			return fmt.Errorf("expected a number array")
		}
		ints := make([]int64, len(items))
		for idx, item := range items {
			if ints[idx], err = asInt(item); err != nil {
				return err
			}
		}
		v.V = ints
	case BoolValueType:
		if v.V, ok = raw.(bool); !ok {
			return fmt.Errorf("expected a bool")
		}
	default:
		v.V = raw
	}
	return err
}

func asInt(raw any) (int64, error) {
	n, ok := raw.(json.Number)
	if !ok {
		return 0, fmt.Errorf("expected an integer")
	}
	return n.Int64()
}

func decodeNumbers(data []byte, into any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(into)
}

// UnmarshalJSON decodes a [type, value] pair into the receiver.
func (v *V) UnmarshalJSON(data []byte) error {
	var got []any
	if err := decodeNumbers(data, &got); err != nil {
		return err
	}
	return v.fromAny(got)
}

// Datum is a single node of a response tree: a property map keyed by string
// table index, and ordered children.
type Datum struct {
	Properties map[int64]*V
	Children   []*Datum
}

func (d *Datum) sortedKeys() []int64 {
	keys := make([]int64, 0, len(d.Properties))
	for k := range d.Properties {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })
	return keys
}

// PrettyPrint renders the receiver deterministically, with properties in
// alphabetical key order.  Only for use in tests.
func (d *Datum) PrettyPrint(indent string, st []string) string {
	keys := d.sortedKeys()
	sort.Slice(keys, func(a, b int) bool { return st[keys[a]] < st[keys[b]] })
	ret := make([]string, 0, len(keys)+len(d.Children))
	for _, k := range keys {
		ret = append(ret, fmt.Sprintf("%sProp '%s': %s", indent, st[k], d.Properties[k].PrettyPrint(st)))
	}
	for _, child := range d.Children {
		ret = append(ret, indent+"Child:", child.PrettyPrint(indent+"  ", st))
	}
	return strings.Join(ret, "\n")
}

// MarshalJSON encodes a Datum as [[[key, V]...], [Datum...]].
func (d *Datum) MarshalJSON() ([]byte, error) {
	props := make([]any, 0, len(d.Properties))
	for _, k := range d.sortedKeys() {
		props = append(props, []any{k, d.Properties[k]})
	}
	children := make([]any, len(d.Children))
	for idx, child := range d.Children {
		children[idx] = child
	}
	return json.Marshal([]any{props, children})
}

func (d *Datum) fromAny(raw []any) error {
	if len(raw) != 2 {
		return fmt.Errorf("datum must be a [properties, children] pair")
	}
	props, ok := raw[0].([]any)
	if !ok {
		return fmt.Errorf("datum properties must be an array")
	}
	children, ok := raw[1].([]any)
	if !ok {
		return fmt.Errorf("datum children must be an array")
	}
	d.Properties = make(map[int64]*V, len(props))
	d.Children = make([]*Datum, len(children))
	for _, prop := range props {
		kv, ok := prop.([]any)
		if !ok || len(kv) != 2 {
			return fmt.Errorf("datum property must be a [key, value] pair")
		}
		k, err := asInt(kv[0])
		if err != nil {
			return err
		}
		val, ok := kv[1].([]any)
		if !ok {
			return fmt.Errorf("datum property value must be an array")
		}
		v := &V{}
		if err := v.fromAny(val); err != nil {
			return err
		}
		d.Properties[k] = v
	}
	for idx, child := range children {
		c, ok := child.([]any)
		if !ok {
			return fmt.Errorf("datum child must be an array")
		}
		d.Children[idx] = &Datum{}
		if err := d.Children[idx].fromAny(c); err != nil {
			return err
		}
	}
	return nil
}

// UnmarshalJSON decodes a Datum.
func (d *Datum) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := decodeNumbers(data, &raw); err != nil {
		return err
	}
	return d.fromAny(raw)
}

// DataSeriesRequest requests one data series, by query name, from a client.
type DataSeriesRequest struct {
	QueryName  string
	SeriesName string
	Options    map[string]*V
}

// DataSeries is one complete data series in a response.
type DataSeries struct {
	SeriesName string
	Root       *Datum
}

// PrettyPrint renders the receiver deterministically.  Only for use in tests.
func (ds *DataSeries) PrettyPrint(indent string, st []string) string {
	return strings.Join([]string{
		fmt.Sprintf("%sSeries %s", indent, ds.SeriesName),
		indent + "  Root:",
		ds.Root.PrettyPrint(indent+"    ", st),
	}, "\n")
}

// DataRequest is a client's request for one or more data series, along with
// global filters applying to all of them.
type DataRequest struct {
	GlobalFilters  map[string]*V
	SeriesRequests []*DataSeriesRequest
}

// DataRequestFromJSON decodes a DataRequest.
func DataRequestFromJSON(j []byte) (*DataRequest, error) {
	ret := &DataRequest{}
	if err := json.Unmarshal(j, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// Data is a complete response.
type Data struct {
	StringTable []string
	DataSeries  []*DataSeries
}

// PrettyPrint renders the receiver deterministically.  Only for use in tests.
func (d *Data) PrettyPrint() string {
	ret := []string{"Data:"}
	for _, series := range d.DataSeries {
		ret = append(ret, series.PrettyPrint("  ", d.StringTable))
	}
	return strings.Join(ret, "\n")
}

// stringTable interns strings to dense indices.  It is safe for concurrent
// use.
type stringTable struct {
	mu      sync.RWMutex
	indices map[string]int64
	strs    []string
}

func newStringTable(strs ...string) *stringTable {
	st := &stringTable{indices: map[string]int64{}}
	for _, str := range strs {
		st.stringIndex(str)
	}
	return st
}

// stringIndex returns the index of str, interning it if necessary.
func (st *stringTable) stringIndex(str string) int64 {
	st.mu.RLock()
	idx, ok := st.indices[str]
	st.mu.RUnlock()
	if ok {
		return idx
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	// Another writer may have interned str between the two locks.
	if idx, ok := st.indices[str]; ok {
		return idx
	}
	idx = int64(len(st.strs))
	st.strs = append(st.strs, str)
	st.indices[str] = idx
	return idx
}

func (st *stringTable) snapshot() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return append([]string{}, st.strs...)
}

// errorList accumulates the errors encountered while building a response.
type errorList struct {
	mu   sync.Mutex
	errs []error
}

func (el *errorList) add(err error) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.errs = append(el.errs, err)
}

func (el *errorList) failed() bool {
	el.mu.Lock()
	defer el.mu.Unlock()
	return len(el.errs) > 0
}

func (el *errorList) err() error {
	el.mu.Lock()
	defer el.mu.Unlock()
	if len(el.errs) == 0 {
		return nil
	}
	msgs := make([]string, len(el.errs))
	for idx, err := range el.errs {
		msgs[idx] = err.Error()
	}
	return fmt.Errorf("%s", strings.Join(msgs, ", "))
}

// DataResponseBuilder assembles a response to a DataRequest.  DataSeries may
// be called concurrently.
type DataResponseBuilder struct {
	mu   sync.Mutex
	st   *stringTable
	errs *errorList
	d    *Data
}

// NewDataResponseBuilder returns an empty DataResponseBuilder.
func NewDataResponseBuilder() *DataResponseBuilder {
	return &DataResponseBuilder{
		st:   newStringTable(),
		errs: &errorList{},
		d:    &Data{StringTable: []string{}, DataSeries: []*DataSeries{}},
	}
}

// DataBuilder is implemented by types that assemble response Datums.
type DataBuilder interface {
	With(updates ...PropertyUpdate) DataBuilder
	Child() DataBuilder
}

// DataSeries adds a new series answering req and returns a DataBuilder for its
// root.
func (drb *DataResponseBuilder) DataSeries(req *DataSeriesRequest) DataBuilder {
	root := newDatumBuilder(drb.errs, drb.st)
	drb.mu.Lock()
	drb.d.DataSeries = append(drb.d.DataSeries, &DataSeries{
		SeriesName: req.SeriesName,
		Root:       root.d,
	})
	drb.mu.Unlock()
	return root
}

// Data returns the assembled response, or the errors accumulated while
// building it.
func (drb *DataResponseBuilder) Data() (*Data, error) {
	if err := drb.errs.err(); err != nil {
		return nil, err
	}
	drb.d.StringTable = drb.st.snapshot()
	return drb.d, nil
}

// StringValue wraps a string.
func StringValue(str string) *V {
	return &V{V: str, T: StringValueType}
}

// StringIndexValue wraps a string table index.
func StringIndexValue(idx int64) *V {
	return &V{V: idx, T: StringIndexValueType}
}

// StringsValue wraps a string slice.
func StringsValue(strs ...string) *V {
	return &V{V: strs, T: StringsValueType}
}

// StringIndicesValue wraps a slice of string table indices.
func StringIndicesValue(idxs ...int64) *V {
	return &V{V: idxs, T: StringIndicesValueType}
}

// IntegerValue wraps an int64.
func IntegerValue(i int64) *V {
	return &V{V: i, T: IntegerValueType}
}

// IntegersValue wraps an int64 slice.
func IntegersValue(ints ...int64) *V {
	return &V{V: ints, T: IntegersValueType}
}

// DoubleValue wraps a float64.
func DoubleValue(f float64) *V {
	return &V{V: f, T: DoubleValueType}
}

// BoolValue wraps a bool.
func BoolValue(b bool) *V {
	return &V{V: b, T: BoolValueType}
}

// ExpectStringValue returns the string held by val, or an error if val holds
// something else.
func ExpectStringValue(val *V) (string, error) {
	if val.T != StringValueType {
		return "", fmt.Errorf("expected value type 'str'")
	}
	return url.QueryUnescape(val.V.(string))
}

func expectStringIndexValue(val *V) (int64, error) {
	if val.T != StringIndexValueType {
		return 0, fmt.Errorf("expected value type 'str_idx'")
	}
	return val.V.(int64), nil
}

// ExpectStringsValue returns the strings held by val, or an error if val holds
// something else.
func ExpectStringsValue(val *V) ([]string, error) {
	if val.T != StringsValueType {
		return nil, fmt.Errorf("expected value type 'strs'")
	}
	return val.V.([]string), nil
}

func expectStringIndicesValue(val *V) ([]int64, error) {
	if val.T != StringIndicesValueType {
		return nil, fmt.Errorf("expected value type 'str_idxs'")
	}
	return val.V.([]int64), nil
}

// ExpectIntegerValue returns the integer held by val, or an error if val
// holds something else.
func ExpectIntegerValue(val *V) (int64, error) {
	if val.T != IntegerValueType {
		return 0, fmt.Errorf("expected value type 'int'")
	}
	return val.V.(int64), nil
}

// ExpectIntegersValue returns the integers held by val, or an error if val
// holds something else.
func ExpectIntegersValue(val *V) ([]int64, error) {
	if val.T != IntegersValueType {
		return nil, fmt.Errorf("expected value type 'ints'")
	}
	return val.V.([]int64), nil
}

// ExpectDoubleValue returns the double held by val, or an error if val holds
// something else.
func ExpectDoubleValue(val *V) (float64, error) {
	if val.T != DoubleValueType {
		return 0, fmt.Errorf("expected value type 'dbl'")
	}
	return val.V.(float64), nil
}

// ExpectBoolValue returns the bool held by val, or an error if val holds
// something else.
func ExpectBoolValue(val *V) (bool, error) {
	if val.T != BoolValueType {
		return false, fmt.Errorf("expected value type 'bool'")
	}
	return val.V.(bool), nil
}

// PropertyUpdate mutates the datum under construction.  A nil PropertyUpdate
// does nothing.
type PropertyUpdate func(db *datumBuilder) error

// Value is a value whose property key is not yet known.
type Value func(key string) PropertyUpdate

// EmptyUpdate does nothing.
var EmptyUpdate PropertyUpdate = nil

// ErrorProperty fails the response under construction with err.
func ErrorProperty(err error) PropertyUpdate {
	return func(db *datumBuilder) error {
		return err
	}
}

type datumBuilder struct {
	errs *errorList
	st   *stringTable
	d    *Datum
}

func newDatumBuilder(errs *errorList, st *stringTable) *datumBuilder {
	return &datumBuilder{
		errs: errs,
		st:   st,
		d: &Datum{
			Properties: map[int64]*V{},
			Children:   []*Datum{},
		},
	}
}

// With applies updates in order, stopping at the first failure.  Once any
// update in the response has failed, later updates are ignored.
func (db *datumBuilder) With(updates ...PropertyUpdate) DataBuilder {
	if db.errs.failed() {
		return db
	}
	for _, update := range updates {
		if update == nil {
			continue
		}
		if err := update(db); err != nil {
			db.errs.add(err)
			break
		}
	}
	return db
}

// Child appends a new child datum and returns its builder.
func (db *datumBuilder) Child() DataBuilder {
	child := newDatumBuilder(db.errs, db.st)
	db.d.Children = append(db.d.Children, child.d)
	return child
}

func (db *datumBuilder) set(key string, v *V) *datumBuilder {
	db.d.Properties[db.st.stringIndex(key)] = v
	return db
}

func (db *datumBuilder) withStr(key, value string) *datumBuilder {
	return db.set(key, StringIndexValue(db.st.stringIndex(value)))
}

func (db *datumBuilder) indices(values []string) []int64 {
	idxs := make([]int64, len(values))
	for i, val := range values {
		idxs[i] = db.st.stringIndex(val)
	}
	return idxs
}

func (db *datumBuilder) withStrs(key string, values ...string) *datumBuilder {
	return db.set(key, StringIndicesValue(db.indices(values)...))
}

// appendStrs extends the string slice at key, creating it if absent.
func (db *datumBuilder) appendStrs(key string, values ...string) *datumBuilder {
	val, ok := db.d.Properties[db.st.stringIndex(key)]
	if !ok {
		return db.withStrs(key, values...)
	}
	idxs, err := expectStringIndicesValue(val)
	if err != nil {
		db.errs.add(err)
		return db
	}
	val.V = append(idxs, db.indices(values)...)
	return db
}

// If applies du only when predicate holds.
func If(predicate bool, du PropertyUpdate) PropertyUpdate {
	if predicate {
		return du
	}
	return EmptyUpdate
}

// IfElse applies t when predicate holds and f otherwise.
func IfElse(predicate bool, t, f PropertyUpdate) PropertyUpdate {
	if predicate {
		return t
	}
	return f
}

// Chain applies updates in order.
func Chain(updates ...PropertyUpdate) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.With(updates...)
		return nil
	}
}

// Nothing is a Value setting nothing.
var Nothing Value = func(key string) PropertyUpdate {
	return EmptyUpdate
}

// String is a Value holding a string.
func String(value string) Value {
	return func(key string) PropertyUpdate { return StringProperty(key, value) }
}

// Strings is a Value holding strings.
func Strings(values ...string) Value {
	return func(key string) PropertyUpdate { return StringsProperty(key, values...) }
}

// Integer is a Value holding an int64.
func Integer(value int64) Value {
	return func(key string) PropertyUpdate { return IntegerProperty(key, value) }
}

// Double is a Value holding a float64.
func Double(value float64) Value {
	return func(key string) PropertyUpdate { return DoubleProperty(key, value) }
}

// Bool is a Value holding a bool.
func Bool(value bool) Value {
	return func(key string) PropertyUpdate { return BoolProperty(key, value) }
}

// StringProperty sets a string property.
func StringProperty(key, value string) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.withStr(key, value)
		return nil
	}
}

// StringsProperty sets a string slice property.
func StringsProperty(key string, values ...string) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.withStrs(key, values...)
		return nil
	}
}

// StringsPropertyExtended extends a string slice property.
func StringsPropertyExtended(key string, values ...string) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.appendStrs(key, values...)
		return nil
	}
}

// IntegerProperty sets an integer property.
func IntegerProperty(key string, value int64) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.set(key, IntegerValue(value))
		return nil
	}
}

// IntegersProperty sets an integer slice property.
func IntegersProperty(key string, values ...int64) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.set(key, IntegersValue(values...))
		return nil
	}
}

// DoubleProperty sets a double property.
func DoubleProperty(key string, value float64) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.set(key, DoubleValue(value))
		return nil
	}
}

// BoolProperty sets a bool property.
func BoolProperty(key string, value bool) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.set(key, BoolValue(value))
		return nil
	}
}
