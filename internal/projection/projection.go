// Package projection derives the displayed ordering of an object listing:
// a filtered, sorted sequence of indices into a master item list that is
// itself never reordered or mutated.
package projection

import (
	"sort"
	"strings"

	"github.com/averey/spyglass/internal/objstore"
)

// SortKey selects one of the list orderings.
type SortKey int

const (
	SortDefault SortKey = iota
	SortNameAsc
	SortNameDesc
	SortLastModifiedAsc
	SortLastModifiedDesc
	SortSizeAsc
	SortSizeDesc
)

// Labels returns the sort keys in dialog display order with their labels.
func Labels() []string {
	return []string{
		"Default",
		"Name (Asc)",
		"Name (Desc)",
		"Last Modified (Asc)",
		"Last Modified (Desc)",
		"Size (Asc)",
		"Size (Desc)",
	}
}

// Filter returns the indices of items whose name contains substr, in master
// order. The empty substring matches everything without scanning names.
func Filter(items []objstore.Item, substr string) []int {
	indices := make([]int, 0, len(items))
	if substr == "" {
		for i := range items {
			indices = append(indices, i)
		}
		return indices
	}
	for i := range items {
		if strings.Contains(items[i].Name, substr) {
			indices = append(indices, i)
		}
	}
	return indices
}

// Sort reorders indices in place according to key. Equal keys keep their
// relative order. Directories carry neither size nor timestamp, so they
// order before any file under the size and last-modified keys.
func Sort(indices []int, items []objstore.Item, key SortKey) {
	switch key {
	case SortDefault:
		sort.Ints(indices)
	case SortNameAsc:
		sort.SliceStable(indices, func(i, j int) bool {
			return items[indices[i]].Name < items[indices[j]].Name
		})
	case SortNameDesc:
		sort.SliceStable(indices, func(i, j int) bool {
			return items[indices[j]].Name < items[indices[i]].Name
		})
	case SortLastModifiedAsc:
		sort.SliceStable(indices, func(i, j int) bool {
			return compareTime(items[indices[i]], items[indices[j]]) < 0
		})
	case SortLastModifiedDesc:
		sort.SliceStable(indices, func(i, j int) bool {
			return compareTime(items[indices[j]], items[indices[i]]) < 0
		})
	case SortSizeAsc:
		sort.SliceStable(indices, func(i, j int) bool {
			return compareSize(items[indices[i]], items[indices[j]]) < 0
		})
	case SortSizeDesc:
		sort.SliceStable(indices, func(i, j int) bool {
			return compareSize(items[indices[j]], items[indices[i]]) < 0
		})
	}
}

func compareSize(a, b objstore.Item) int {
	switch {
	case a.IsDir && b.IsDir:
		return 0
	case a.IsDir:
		return -1
	case b.IsDir:
		return 1
	case a.Size < b.Size:
		return -1
	case a.Size > b.Size:
		return 1
	}
	return 0
}

func compareTime(a, b objstore.Item) int {
	switch {
	case a.IsDir && b.IsDir:
		return 0
	case a.IsDir:
		return -1
	case b.IsDir:
		return 1
	case a.LastModified.Before(b.LastModified):
		return -1
	case a.LastModified.After(b.LastModified):
		return 1
	}
	return 0
}
