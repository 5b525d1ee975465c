// Package listing orders and paginates directory listings.
package listing

import (
	"sort"
	"strings"

	"github.com/maruel/natural"

	"github.com/any-index/any-index/internal/drive"
)

// Sort fields accepted by Process.
const (
	SortName         = "name"
	SortSize         = "size"
	SortLastModified = "lastModifiedDateTime"
)

// DefaultPageSize applies when the account has no usable ListLimit.
const DefaultPageSize = 10

// Options controls one Process call.
type Options struct {
	SortField  string
	Descending bool
	PageSize   int
	Page       int
}

// ParseSortBy reads the "field,direction" query value. A missing direction
// means descending; an explicit one sorts descending only when it is exactly
// "desc". An empty field means name.
func ParseSortBy(raw string) (field string, descending bool) {
	field, direction, found := strings.Cut(strings.TrimSpace(raw), ",")
	field = strings.TrimSpace(field)
	if field == "" {
		field = SortName
	}
	if !found {
		return field, true
	}
	return field, strings.TrimSpace(direction) == "desc"
}

// Process returns one page of items: folders first, then files, each group
// stably sorted by the requested field. The input slice is not modified.
func Process(items []drive.Item, opts Options) drive.ListingPage {
	field := normalizeField(opts.SortField)
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}

	folders := make([]drive.Item, 0, len(items))
	files := make([]drive.Item, 0, len(items))
	for _, item := range items {
		if item.IsFolder {
			folders = append(folders, item)
		} else {
			files = append(files, item)
		}
	}
	less := lessFunc(field)
	sortGroup(folders, less, opts.Descending)
	sortGroup(files, less, opts.Descending)
	ordered := append(folders, files...)

	total := len(ordered)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	pageItems := make([]drive.Item, 0, pageSize)
	if start < total {
		end := start + pageSize
		if end > total {
			end = total
		}
		pageItems = append(pageItems, ordered[start:end]...)
	}

	return drive.ListingPage{
		Items:      pageItems,
		PageSize:   pageSize,
		Page:       page,
		Total:      total,
		TotalPages: totalPages,
		SortField:  field,
		Descending: opts.Descending,
	}
}

func normalizeField(field string) string {
	switch field {
	case SortName, SortSize, SortLastModified:
		return field
	default:
		return SortName
	}
}

func lessFunc(field string) func(a, b drive.Item) bool {
	switch field {
	case SortSize:
		return func(a, b drive.Item) bool { return a.Size < b.Size }
	case SortLastModified:
		return func(a, b drive.Item) bool { return a.LastModified.Before(b.LastModified) }
	default:
		return func(a, b drive.Item) bool { return natural.Less(a.Name, b.Name) }
	}
}

func sortGroup(items []drive.Item, less func(a, b drive.Item) bool, descending bool) {
	sort.SliceStable(items, func(i, j int) bool {
		if descending {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}
