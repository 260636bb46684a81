package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"motifapi/internal/motiflet"
)

// Layout describes how dimensions are arranged in a CSV file.
type Layout string

const (
	// LayoutColumns stores one dimension per column and one observation per line.
	// An optional first line holds the labels.
	LayoutColumns Layout = "columns"
	// LayoutRows stores one dimension per line. A non-numeric first cell is its label.
	LayoutRows Layout = "rows"
)

var (
	ErrUnknownLayout = errors.New("unknown layout")
	ErrInvalidValue  = errors.New("invalid value")
	ErrNoData        = errors.New("no data")
)

// ParseLayout maps a user supplied layout name to a Layout. The empty string selects LayoutColumns.
func ParseLayout(s string) (Layout, error) {
	switch Layout(strings.ToLower(strings.TrimSpace(s))) {
	case "", LayoutColumns:
		return LayoutColumns, nil
	case LayoutRows:
		return LayoutRows, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownLayout)
}

// Parse reads a multivariate time series from comma or tab separated text.
// The delimiter is detected from the first line.
func Parse(r io.Reader, layout Layout) (motiflet.Series, error) {
	br := bufio.NewReader(r)
	cr := csv.NewReader(br)
	cr.Comma = sniffDelimiter(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = false

	// lines holds the physical line of each record; blank lines shift them
	var (
		records [][]string
		lines   []int
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return motiflet.Series{}, fmt.Errorf("read csv: %w", err)
		}
		if blank(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)
		records = append(records, rec)
		lines = append(lines, line)
	}
	if len(records) == 0 {
		return motiflet.Series{}, ErrNoData
	}

	var (
		s   motiflet.Series
		err error
	)
	switch layout {
	case LayoutColumns, "":
		s, err = parseColumns(records, lines)
	case LayoutRows:
		s, err = parseRows(records, lines)
	default:
		return motiflet.Series{}, fmt.Errorf("%q: %w", layout, ErrUnknownLayout)
	}
	if err != nil {
		return motiflet.Series{}, err
	}
	if err := s.Validate(); err != nil {
		return motiflet.Series{}, err
	}
	return s, nil
}

func parseColumns(records [][]string, lines []int) (motiflet.Series, error) {
	var labels []string
	body := records
	if !numeric(records[0]) {
		labels = trimAll(records[0])
		body = records[1:]
		lines = lines[1:]
	}
	if len(body) == 0 {
		return motiflet.Series{}, ErrNoData
	}

	dims := len(body[0])
	if labels != nil && len(labels) != dims {
		return motiflet.Series{}, fmt.Errorf("header has %d labels but line %d has %d values: %w",
			len(labels), lines[0], dims, motiflet.ErrRaggedSeries)
	}

	values := make([][]float64, dims)
	for d := range values {
		values[d] = make([]float64, len(body))
	}
	for t, rec := range body {
		if len(rec) != dims {
			return motiflet.Series{}, fmt.Errorf("line %d has %d values, want %d: %w",
				lines[t], len(rec), dims, motiflet.ErrRaggedSeries)
		}
		for d, cell := range rec {
			v, err := parseCell(cell, lines[t], d+1)
			if err != nil {
				return motiflet.Series{}, err
			}
			values[d][t] = v
		}
	}
	return motiflet.NewSeries(values, labels), nil
}

func parseRows(records [][]string, lines []int) (motiflet.Series, error) {
	labels := make([]string, len(records))
	values := make([][]float64, len(records))
	labelled := false
	for i, rec := range records {
		cells := rec
		first := 1
		if _, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64); err != nil {
			labels[i] = strings.TrimSpace(rec[0])
			cells = rec[1:]
			first = 2
			labelled = true
		}
		row := make([]float64, len(cells))
		for j, cell := range cells {
			v, err := parseCell(cell, lines[i], j+first)
			if err != nil {
				return motiflet.Series{}, err
			}
			row[j] = v
		}
		values[i] = row
	}
	if !labelled {
		labels = nil
	}
	return motiflet.NewSeries(values, fillLabels(labels)), nil
}

func fillLabels(labels []string) []string {
	for i, l := range labels {
		if l == "" {
			labels[i] = strconv.Itoa(i)
		}
	}
	return labels
}

func parseCell(cell string, line, col int) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, fmt.Errorf("line %d, column %d: %q: %w", line, col, cell, ErrInvalidValue)
	}
	return v, nil
}

func sniffDelimiter(br *bufio.Reader) rune {
	peek, _ := br.Peek(4096)
	if i := bytes.IndexByte(peek, '\n'); i >= 0 {
		peek = peek[:i]
	}
	if bytes.IndexByte(peek, '\t') >= 0 && bytes.IndexByte(peek, ',') < 0 {
		return '\t'
	}
	return ','
}

func numeric(rec []string) bool {
	for _, cell := range rec {
		if _, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err != nil {
			return false
		}
	}
	return true
}

func blank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func trimAll(rec []string) []string {
	out := make([]string, len(rec))
	for i, cell := range rec {
		out[i] = strings.TrimSpace(cell)
	}
	return out
}
