// Package dataset loads labeled collections of fixed-length time series
// and prepares them for spectral estimation: each class maps to a
// [time x case] matrix whose columns are standardized to zero mean and
// unit variance.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/RyanBlaney/qspectra/algorithms/common"
)

// ClassMatrix holds every case of one class as a [time][case] matrix
type ClassMatrix struct {
	Label string      `json:"label"`
	Data  [][]float64 `json:"data"` // [time][case]
}

// Dataset maps class labels onto their case matrices
type Dataset map[string]*ClassMatrix

// NewClassMatrix wraps an existing matrix after shape validation
func NewClassMatrix(label string, data [][]float64) (*ClassMatrix, error) {
	if len(data) == 0 {
		return nil, errors.New("empty matrix")
	}
	cases := len(data[0])
	if cases == 0 {
		return nil, errors.New("matrix has no cases")
	}
	for t, row := range data {
		if len(row) != cases {
			return nil, fmt.Errorf("ragged matrix: row %d has %d cases, want %d", t, len(row), cases)
		}
	}
	return &ClassMatrix{Label: label, Data: data}, nil
}

// Length returns the series length of the class
func (c *ClassMatrix) Length() int {
	return len(c.Data)
}

// Cases returns the number of cases in the class
func (c *ClassMatrix) Cases() int {
	if len(c.Data) == 0 {
		return 0
	}
	return len(c.Data[0])
}

// Case extracts one case as a standalone series
func (c *ClassMatrix) Case(idx int) ([]float64, error) {
	if idx < 0 || idx >= c.Cases() {
		return nil, fmt.Errorf("case index %d outside [0, %d)", idx, c.Cases())
	}
	series := make([]float64, c.Length())
	for t := range c.Data {
		series[t] = c.Data[t][idx]
	}
	return series, nil
}

// AllCases extracts every case as a slice of series, in column order
func (c *ClassMatrix) AllCases() [][]float64 {
	cases := make([][]float64, c.Cases())
	for idx := range cases {
		series, _ := c.Case(idx)
		cases[idx] = series
	}
	return cases
}

// Standardize rescales every case to zero mean and unit variance in place
func (c *ClassMatrix) Standardize() {
	for idx := 0; idx < c.Cases(); idx++ {
		series, _ := c.Case(idx)
		normalized := common.Normalize(series)
		for t := range c.Data {
			c.Data[t][idx] = normalized[t]
		}
	}
}

// LoadCSV reads one class from a CSV file where each column is one case
// and each row one time index. Blank and non-numeric cells abort the
// load; series in a class must be complete and of equal length.
func LoadCSV(filename, label string) (*ClassMatrix, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadCSVFromReader(file, label)
}

// LoadCSVFromReader reads one class from an io.Reader in the LoadCSV
// layout.
func LoadCSVFromReader(r io.Reader, label string) (*ClassMatrix, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	var data [][]float64

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		row := make([]float64, len(record))
		for i, cell := range record {
			cell = strings.TrimSpace(strings.Trim(cell, "\""))
			val, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", len(data)+1, i+1, err)
			}
			row[i] = val
		}
		data = append(data, row)
	}

	return NewClassMatrix(label, data)
}
