package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
)

const (
	businessDataCollection    = "datosNegocio"
	transactionsSubcollection = "transacciones"
)

// firestoreBusinessDataRepository implements BusinessDataRepository over the
// datosNegocio/{uid}/transacciones subtree.
type firestoreBusinessDataRepository struct {
	client *firestore.Client
}

// NewFirestoreBusinessDataRepository creates a new instance of firestoreBusinessDataRepository.
func NewFirestoreBusinessDataRepository(client *firestore.Client) BusinessDataRepository {
	return &firestoreBusinessDataRepository{client: client}
}

// PurgeTransactions erases the transactions subcollection for uid in bounded
// batches. Individual record shape is irrelevant here; the subtree is treated
// as an opaque set of documents.
func (r *firestoreBusinessDataRepository) PurgeTransactions(ctx context.Context, uid string, batchSize int) error {
	if uid == "" {
		return errors.New("uid cannot be empty for PurgeTransactions operation")
	}
	path := fmt.Sprintf("%s/%s/%s", businessDataCollection, uid, transactionsSubcollection)
	return PurgeCollection(ctx, r.client, path, batchSize)
}

// DeleteParent removes the datosNegocio parent document for uid. Deleting an
// absent document succeeds, keeping the deletion orchestrator re-runnable.
func (r *firestoreBusinessDataRepository) DeleteParent(ctx context.Context, uid string) error {
	if uid == "" {
		return errors.New("uid cannot be empty for DeleteParent operation")
	}
	_, err := r.client.Collection(businessDataCollection).Doc(uid).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete business data document for uid '%s': %w", uid, err)
	}
	return nil
}
