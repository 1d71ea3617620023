package queue

import (
	"context"

	"pagesort/pkg/schema"
)

// Sorter is the pipeline a queue runs for each item.
type Sorter interface {
	Sort(ctx context.Context, req schema.SortRequest, onAnalysis func([]schema.PageAnalysis)) (schema.OrderingResult, error)
}

type Queue interface {
	Start()
	Stop()
	Add(id string, req schema.SortRequest) (*Item, error)
}
