package gcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/Lllllllleong/resumind/internal/models"
)

// NewFirestoreClient creates and returns a new Firestore client for the given project ID.
// It centralizes client creation for all services.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// kvDocument is the Firestore shape of one key/value entry. The document ID is the key.
type kvDocument struct {
	Value     string    `firestore:"value"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// RecordStore is a key/value store on top of one Firestore collection.
type RecordStore struct {
	client     *firestore.Client
	collection string
}

// NewRecordStore returns a store backed by collection.
func NewRecordStore(client *firestore.Client, collection string) *RecordStore {
	return &RecordStore{client: client, collection: collection}
}

// Set overwrites the value stored under key.
func (s *RecordStore) Set(ctx context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	doc := kvDocument{Value: value, UpdatedAt: time.Now().UTC()}
	if _, err := s.client.Collection(s.collection).Doc(key).Set(ctx, doc); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// List returns every entry whose key starts with prefix, ordered by key.
func (s *RecordStore) List(ctx context.Context, prefix string, includeValues bool) ([]models.Entry, error) {
	col := s.client.Collection(s.collection)
	q := col.OrderBy(firestore.DocumentID, firestore.Asc)
	if prefix != "" {
		if err := validateKey(prefix); err != nil {
			return nil, err
		}
		q = q.Where(firestore.DocumentID, ">=", col.Doc(prefix)).
			Where(firestore.DocumentID, "<", col.Doc(prefix+"\uf8ff"))
	}
	if !includeValues {
		q = q.Select()
	}

	it := q.Documents(ctx)
	defer it.Stop()

	var entries []models.Entry
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s/%s*: %w", s.collection, prefix, err)
		}
		entry := models.Entry{Key: snap.Ref.ID}
		if includeValues {
			var doc kvDocument
			if err := snap.DataTo(&doc); err != nil {
				// Left empty so the caller treats it as a malformed entry.
				slog.Warn("Firestore entry has unexpected shape.", "key", snap.Ref.ID, "error", err)
			} else {
				entry.Value = doc.Value
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func validateKey(key string) error {
	if key == "" || strings.Contains(key, "/") || key == "." || key == ".." {
		return fmt.Errorf("invalid firestore document id %q", key)
	}
	return nil
}
