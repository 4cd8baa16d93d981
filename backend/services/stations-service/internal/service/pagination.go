package service

import (
	"strconv"
	"strings"
)

// PageSize is the number of stations per result page.
const PageSize = 10

// Page is one slice of a paginated result.
type Page[T any] struct {
	Items       []T  `json:"items"`
	Number      int  `json:"number"`
	NumPages    int  `json:"num_pages"`
	Total       int  `json:"total"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
}

// Paginate returns the requested page of items. A missing or non-integer page selects
// page 1. Any integer outside 1..NumPages selects the last page.
// An empty input yields a single empty first page.
func Paginate[T any](items []T, rawPage string, size int) Page[T] {
	if size <= 0 {
		size = PageSize
	}
	numPages := (len(items) + size - 1) / size
	if numPages == 0 {
		numPages = 1
	}

	number, err := strconv.Atoi(strings.TrimSpace(rawPage))
	switch {
	case err != nil:
		number = 1
	case number < 1 || number > numPages:
		number = numPages
	}

	start := (number - 1) * size
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	page := make([]T, 0, end-start)
	page = append(page, items[start:end]...)

	return Page[T]{
		Items:       page,
		Number:      number,
		NumPages:    numPages,
		Total:       len(items),
		HasPrevious: number > 1,
		HasNext:     number < numPages,
	}
}
