// Package pagination defines the page window type returned by the backend
// and the merge rules used when accumulating pages on the client.
package pagination

// Page is a window over a server-side ordered collection, mirroring the
// backend's page envelope. Number is the zero-based index of this window
// within the full collection under its current sort.
type Page[T any] struct {
	Content          []T   `json:"content"`
	TotalElements    int64 `json:"totalElements"`
	TotalPages       int   `json:"totalPages"`
	Number           int   `json:"number"`
	Size             int   `json:"size"`
	NumberOfElements int   `json:"numberOfElements"`
	First            bool  `json:"first"`
	Last             bool  `json:"last"`
}

// FromSlice wraps a bare slice in a single-page window. Used to normalize
// endpoints that return a raw JSON array instead of a page envelope.
func FromSlice[T any](items []T) Page[T] {
	return Page[T]{
		Content:          items,
		TotalElements:    int64(len(items)),
		TotalPages:       1,
		Number:           0,
		Size:             len(items),
		NumberOfElements: len(items),
		First:            true,
		Last:             true,
	}
}

// MergeByKey appends incoming items to existing, skipping any item whose key
// has already been seen. Existing entries keep their position and their data:
// the first-seen occurrence wins over later duplicates. New items are
// appended in incoming order. Returns the merged slice and the number of
// items actually added.
//
// The returned slice never aliases existing, so a caller can hand out the
// previous slice as an immutable snapshot.
func MergeByKey[T any, K comparable](existing, incoming []T, key func(T) K) ([]T, int) {
	seen := make(map[K]struct{}, len(existing)+len(incoming))
	merged := make([]T, 0, len(existing)+len(incoming))

	for _, item := range existing {
		k := key(item)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		merged = append(merged, item)
	}

	added := 0
	for _, item := range incoming {
		k := key(item)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		merged = append(merged, item)
		added++
	}

	return merged, added
}
