package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// docPager is the seam the purge loop runs against: fetch one page of
// document IDs, delete one page atomically. The Firestore implementation is
// collectionPager below; tests drive the loop with a fake paginated source.
type docPager interface {
	nextPage(ctx context.Context, limit int) ([]string, error)
	deletePage(ctx context.Context, ids []string) error
}

// purgeLoop repeatedly fetches up to batchSize documents and deletes them as
// one batch until a fetch returns an empty page. Ordering by document
// identity in the pager guarantees forward progress: every deleted page
// shrinks the remaining ID range. A failed batch surfaces to the caller; the
// next run re-queries fresh, so documents are deleted at least once and
// deleting an already-deleted document is a no-op.
func purgeLoop(ctx context.Context, pager docPager, batchSize int) error {
	for {
		ids, err := pager.nextPage(ctx, batchSize)
		if err != nil {
			return fmt.Errorf("failed to query purge batch: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}
		if err := pager.deletePage(ctx, ids); err != nil {
			return fmt.Errorf("failed to delete purge batch of %d documents: %w", len(ids), err)
		}
	}
}

// collectionPager pages over a single Firestore collection ordered by
// document ID and deletes pages with an atomic WriteBatch.
type collectionPager struct {
	client *firestore.Client
	path   string
}

func (p *collectionPager) nextPage(ctx context.Context, limit int) ([]string, error) {
	iter := p.client.Collection(p.path).
		OrderBy(firestore.DocumentID, firestore.Asc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var ids []string
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, doc.Ref.ID)
	}
	return ids, nil
}

func (p *collectionPager) deletePage(ctx context.Context, ids []string) error {
	batch := p.client.Batch()
	for _, id := range ids {
		batch.Delete(p.client.Collection(p.path).Doc(id))
	}
	_, err := batch.Commit(ctx)
	return err
}

// PurgeCollection deletes every document in the collection at path, at most
// batchSize per atomic batch write (the underlying store caps a batch at 500
// operations). Calling it on a missing or empty collection completes
// immediately: a query on a nonexistent collection simply returns no
// documents.
func PurgeCollection(ctx context.Context, client *firestore.Client, path string, batchSize int) error {
	if path == "" {
		return fmt.Errorf("collection path cannot be empty for PurgeCollection")
	}
	if batchSize <= 0 || batchSize > 500 {
		return fmt.Errorf("batchSize must be between 1 and 500, got %d", batchSize)
	}
	return purgeLoop(ctx, &collectionPager{client: client, path: path}, batchSize)
}
