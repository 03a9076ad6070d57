package batch

import (
	"context"

	"github.com/fwojciec/manparse"
)

// Publish writes every stored document and the indexes over them to store,
// then commits it. Pages skipped by the manifest are published too, so every
// key in the indexes has a document file. The store is aborted if any step
// fails.
func Publish(ctx context.Context, docs manparse.DocumentService, store manparse.DocumentStore) error {
	all, err := docs.FindDocuments(ctx, manparse.DocumentFilter{})
	if err != nil {
		_ = store.Abort()
		return err
	}
	for _, doc := range all {
		if err := store.CreateDocument(ctx, doc); err != nil {
			_ = store.Abort()
			return err
		}
	}
	if err := store.WriteIndex(ctx, manparse.BuildIndex(all)); err != nil {
		_ = store.Abort()
		return err
	}
	return store.Commit()
}
