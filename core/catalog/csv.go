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
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// CSVOptions configures CSV import behavior
type CSVOptions struct {
	// HasHeader indicates whether the first row contains column headers
	HasHeader bool
	// Delimiter is the field delimiter (defaults to comma)
	Delimiter rune
}

// DefaultCSVOptions returns default import options
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		HasHeader: true,
		Delimiter: ',',
	}
}

// ImportCSVFile imports a CSV file as a table
func ImportCSVFile(name, path string, options CSVOptions) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ImportCSV(name, file, options)
}

// ImportCSV imports CSV data from an io.Reader. Values are kept verbatim.
func ImportCSV(name string, reader io.Reader, options CSVOptions) (*Table, error) {
	csvReader := csv.NewReader(reader)
	if options.Delimiter != 0 {
		csvReader.Comma = options.Delimiter
	}

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	var headers []string
	dataRows := records
	if options.HasHeader {
		headers = records[0]
		dataRows = records[1:]
	} else {
		// Generate column names if no header
		headers = make([]string, len(records[0]))
		for i := range headers {
			headers[i] = fmt.Sprintf("column_%d", i+1)
		}
	}

	table := NewTable(name, headers)
	if len(table.GetColumnNames()) != len(headers) {
		return nil, fmt.Errorf("CSV header has duplicate column names")
	}
	for i, record := range dataRows {
		if err := table.AppendRow(record); err != nil {
			return nil, fmt.Errorf("CSV row %d: %w", i+1, err)
		}
	}
	return table, nil
}
