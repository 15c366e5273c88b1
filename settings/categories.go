package settings

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// CategoryLinks is the storage collaborator for the site-category
// many-to-many reconciliation.
type CategoryLinks interface {
	LinkedCategoryIDs(ctx context.Context, siteID uuid.UUID) ([]int64, error)
	AddCategories(ctx context.Context, siteID uuid.UUID, categoryIDs []int64) error
	RemoveCategories(ctx context.Context, siteID uuid.UUID, categoryIDs []int64) error
}

// ReconcileCategories diffs the desired category ids against the currently
// linked ones, then runs the delete and insert sides concurrently. Both
// sides empty is a no-op.
func ReconcileCategories(ctx context.Context, links CategoryLinks, siteID uuid.UUID, desired []int64) error {
	current, err := links.LinkedCategoryIDs(ctx, siteID)
	if err != nil {
		return err
	}

	toRemove := diffIDs(current, desired)
	toAdd := diffIDs(desired, current)

	if len(toRemove) < 1 && len(toAdd) < 1 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)

	if len(toRemove) > 0 {
		g.Go(func() error {
			return links.RemoveCategories(gctx, siteID, toRemove)
		})
	}

	if len(toAdd) > 0 {
		g.Go(func() error {
			return links.AddCategories(gctx, siteID, toAdd)
		})
	}

	return g.Wait()
}

// diffIDs returns the ids in a that are missing from b, preserving order.
func diffIDs(a []int64, b []int64) []int64 {
	seen := make(map[int64]bool, len(b))

	for _, id := range b {
		seen[id] = true
	}

	out := []int64{}

	for _, id := range a {
		if !seen[id] {
			out = append(out, id)
		}
	}

	return out
}
