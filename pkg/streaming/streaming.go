// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

// Package streaming traverses paginated Checkmk collections with constant
// memory, one page at a time.
package streaming

import (
	"context"
)

// FetchPage retrieves one page of items at the given offset. It returns the
// page and whether more items are known to be available beyond it. A fetch
// that returns an empty page terminates the stream regardless of more.
type FetchPage[T any] func(ctx context.Context, offset, limit int) (items []T, more bool, err error)

// Batch is one yielded page of a paginated stream.
type Batch[T any] struct {
	Items         []T  `json:"items"`
	Number        int  `json:"batch_number"`
	Offset        int  `json:"offset"`
	MoreAvailable bool `json:"more_available"`
}

// Stream lazily fetches pages of size batchSize and sends them on the
// returned channel in upstream order. The stream ends when a page comes back
// empty, when the fetcher reports no more items, or when ctx is cancelled;
// cancellation halts the iterator without further fetches. A fetch error is
// delivered on the error channel and ends the stream; batches already yielded
// are not retracted.
func Stream[T any](ctx context.Context, fetch FetchPage[T], batchSize int) (<-chan Batch[T], <-chan error) {
	if batchSize <= 0 {
		batchSize = 100
	}
	batches := make(chan Batch[T])
	errc := make(chan error, 1)

	go func() {
		defer close(batches)
		defer close(errc)

		offset := 0
		number := 0
		for {
			if ctx.Err() != nil {
				return
			}

			items, more, err := fetch(ctx, offset, batchSize)
			if err != nil {
				errc <- err
				return
			}
			if len(items) == 0 {
				return
			}

			// A short page means the collection is exhausted even if the
			// fetcher did not say so explicitly.
			if len(items) < batchSize {
				more = false
			}

			number++
			batch := Batch[T]{
				Items:         items,
				Number:        number,
				Offset:        offset,
				MoreAvailable: more,
			}

			select {
			case batches <- batch:
			case <-ctx.Done():
				return
			}

			if !more {
				return
			}
			offset += len(items)
		}
	}()

	return batches, errc
}

// Collect drains a stream into memory. It is intended for tests and for
// tools that explicitly bound the number of batches.
func Collect[T any](ctx context.Context, fetch FetchPage[T], batchSize, maxBatches int) ([]Batch[T], error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	batches, errc := Stream(ctx, fetch, batchSize)
	var out []Batch[T]
	for batch := range batches {
		out = append(out, batch)
		if maxBatches > 0 && len(out) >= maxBatches {
			cancel()
			break
		}
	}
	if err := <-errc; err != nil {
		return out, err
	}
	return out, nil
}
