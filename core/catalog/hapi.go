/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The HAPI Table Authors

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

package catalog

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// maxBinRanges is the number of bin ranges listed before the middle ones are
// elided.
const maxBinRanges = 4

// infoSkipped are /info response fields that carry no catalog information.
var infoSkipped = map[string]bool{"HAPI": true, "status": true, "parameters": true}

// record collects one row's flattened fields in first-seen order.
type record struct {
	values map[string]string
	order  []string
}

func newRecord() *record {
	return &record{values: make(map[string]string)}
}

func (r *record) set(key, value string) {
	if _, ok := r.values[key]; !ok {
		r.order = append(r.order, key)
	}
	r.values[key] = value
}

// flatten stores scalars under key, nested object fields under key/field
// and arrays as a bracketed list.
func (r *record) flatten(key string, v gjson.Result) {
	switch {
	case v.IsObject():
		v.ForEach(func(k, child gjson.Result) bool {
			r.flatten(joinKey(key, k.String()), child)
			return true
		})
	case v.IsArray():
		r.set(key, listText(v))
	default:
		r.set(key, v.String())
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}

func listText(v gjson.Result) string {
	var items []string
	for _, item := range v.Array() {
		if item.IsArray() {
			items = append(items, listText(item))
		} else {
			items = append(items, item.String())
		}
	}
	return "[" + strings.Join(items, ", ") + "]"
}

// binsText summarises the ranges of a parameter's first bins dimension, e.g.
// "[0, 1], [1, 2], '...', [9, 10]". Bins without ranges are listed whole.
func binsText(bins gjson.Result) string {
	ranges := bins.Get("0.ranges")
	if !ranges.IsArray() {
		return listText(bins)
	}
	var items []string
	for _, r := range ranges.Array() {
		items = append(items, listText(r))
	}
	if len(items) > maxBinRanges {
		items = append(items[:2:2], "'...'", items[len(items)-1])
	}
	return strings.Join(items, ", ")
}

// ParseCatalogs reads the combined catalog of all servers, a JSON object
// keyed by server ID whose values hold a "catalog" list of datasets with
// optional "info" responses. It returns a datasets table with one row per
// dataset and a parameters table with one row per parameter.
func ParseCatalogs(data []byte) (datasets, parameters *Table, err error) {
	if !gjson.ValidBytes(data) {
		return nil, nil, errors.New("invalid catalog JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, nil, errors.New("catalog JSON must be an object keyed by server")
	}

	datasets = NewTable("datasets", []string{"server", "id"})
	parameters = NewTable("parameters", []string{"server", "id", "name"})

	root.ForEach(func(server, entry gjson.Result) bool {
		entry.Get("catalog").ForEach(func(_, ds gjson.Result) bool {
			id := ds.Get("id").String()
			rec := newRecord()
			rec.set("server", server.String())
			rec.set("id", id)
			ds.ForEach(func(k, v gjson.Result) bool {
				if k.String() != "info" {
					rec.flatten(k.String(), v)
				}
				return true
			})

			info := ds.Get("info")
			info.ForEach(func(k, v gjson.Result) bool {
				if !infoSkipped[k.String()] {
					rec.flatten(k.String(), v)
				}
				return true
			})

			if params := info.Get("parameters"); params.IsArray() {
				list := params.Array()
				rec.set("x_nParams", strconv.Itoa(len(list)))
				for _, p := range list {
					parameters.appendRecord(parameterRecord(server.String(), id, p))
				}
			}
			datasets.appendRecord(rec.values, rec.order)
			return true
		})
		return true
	})
	return datasets, parameters, nil
}

func parameterRecord(server, dataset string, p gjson.Result) (map[string]string, []string) {
	rec := newRecord()
	rec.set("server", server)
	rec.set("id", dataset)
	rec.set("name", p.Get("name").String())
	p.ForEach(func(k, v gjson.Result) bool {
		if k.String() == "bins" {
			rec.set("bins", binsText(v))
		} else {
			rec.flatten(k.String(), v)
		}
		return true
	})
	return rec.values, rec.order
}

// ImportCatalogFile reads a combined catalog file.
func ImportCatalogFile(path string) (datasets, parameters *Table, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	datasets, parameters, err = ParseCatalogs(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return datasets, parameters, nil
}
