package memory

import (
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/prompt_books/internal/apperrors"
	"github.com/SscSPs/prompt_books/internal/utils/pagination"
)

// pageKey is the descending sort key of a listed row.
type pageKey struct {
	sortDate  time.Time
	createdAt time.Time
	id        string
}

// less reports whether k sorts after other in a newest-first listing.
func (k pageKey) less(other pageKey) bool {
	if !k.sortDate.Equal(other.sortDate) {
		return k.sortDate.After(other.sortDate)
	}
	if !k.createdAt.Equal(other.createdAt) {
		return k.createdAt.After(other.createdAt)
	}
	return k.id > other.id
}

// paginate orders items by (sortDate, createdAt, id) descending and cuts one page
// after the cursor in nextToken.
func paginate[T any](items []T, key func(T) pageKey, limit int, nextToken *string) ([]T, *string, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	sort.Slice(items, func(i, j int) bool {
		return key(items[i]).less(key(items[j]))
	})

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreated, lastID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, err)
		}
		cursor := pageKey{sortDate: lastDate, createdAt: lastCreated, id: lastID}
		start := len(items)
		for i, it := range items {
			if cursor.less(key(it)) {
				start = i
				break
			}
		}
		items = items[start:]
	}

	if len(items) <= limit {
		return items, nil, nil
	}
	page := items[:limit]
	k := key(page[limit-1])
	token := pagination.EncodeToken(k.sortDate, k.createdAt, k.id)
	return page, &token, nil
}
