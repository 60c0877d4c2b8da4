// Package memory provides map-backed implementations of every repository
// interface. They back the test suite and the server's no-database mode.
// Not-found is reported as pgx.ErrNoRows so services behave identically
// against either backend.
package memory

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

func newID() string {
	return uuid.NewString()
}

func page[T any](items []T, limit, offset, fallback int) []T {
	if limit <= 0 {
		limit = fallback
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	out := make([]T, end-offset)
	copy(out, items[offset:end])
	return out
}

func sortNewestFirst[T any](items []T, createdAt func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]).After(createdAt(items[j]))
	})
}
