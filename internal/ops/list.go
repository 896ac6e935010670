package ops

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/hpungsan/ytnb/internal/errors"
	"github.com/hpungsan/ytnb/internal/notebooklm"
)

// Sort keys accepted by List.
const (
	SortTitle   = "title"
	SortCreated = "created"
	SortUpdated = "updated"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Sort   string // title (default), created or updated
	Desc   bool
	Prefix string // optional title prefix filter, case-sensitive
}

// NotebookItem is one row of a notebook listing.
type NotebookItem struct {
	notebooklm.Notebook
	URL string `json:"url"`
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items []NotebookItem `json:"items"`
	Count int            `json:"count"`
	Sort  string         `json:"sort"`
}

// List retrieves every notebook, optionally filtered by title prefix, sorted.
func List(ctx context.Context, client notebooklm.Client, input ListInput) (*ListOutput, error) {
	sortKey := strings.ToLower(strings.TrimSpace(input.Sort))
	if sortKey == "" {
		sortKey = SortTitle
	}
	var compare func(a, b NotebookItem) int
	switch sortKey {
	case SortTitle:
		compare = func(a, b NotebookItem) int {
			return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	case SortCreated:
		compare = func(a, b NotebookItem) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortUpdated:
		compare = func(a, b NotebookItem) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	default:
		return nil, errors.NewInvalidInput(fmt.Sprintf("sort must be one of %s, %s, %s", SortTitle, SortCreated, SortUpdated))
	}

	notebooks, err := client.ListNotebooks(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]NotebookItem, 0, len(notebooks))
	for _, nb := range notebooks {
		if input.Prefix != "" && !strings.HasPrefix(nb.Title, input.Prefix) {
			continue
		}
		items = append(items, NotebookItem{Notebook: nb, URL: notebooklm.URL(nb.ID)})
	}

	if input.Desc {
		slices.SortStableFunc(items, func(a, b NotebookItem) int { return compare(b, a) })
	} else {
		slices.SortStableFunc(items, compare)
	}

	order := "asc"
	if input.Desc {
		order = "desc"
	}
	return &ListOutput{
		Items: items,
		Count: len(items),
		Sort:  sortKey + "_" + order,
	}, nil
}
