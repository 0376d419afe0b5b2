package transcripts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"transcript-analyzer/internal/shared/storage/object"
)

const objectKeyPrefix = "analyses/"

// ObjectRepo stores each analysis as a JSON document in an object store.
type ObjectRepo struct {
	Store object.Store
}

// NewObjectRepo constructs an ObjectRepo.
func NewObjectRepo(store object.Store) *ObjectRepo {
	return &ObjectRepo{Store: store}
}

// Save writes analyses/<id>.json, replacing any previous document.
func (r *ObjectRepo) Save(ctx context.Context, analysis Analysis) error {
	key, ok := objectKey(analysis.ID)
	if !ok {
		return &RepositoryError{Op: "save", Err: fmt.Errorf("invalid analysis id %q", analysis.ID)}
	}
	if analysis.ActionItems == nil {
		analysis.ActionItems = []string{}
	}
	payload, err := json.Marshal(analysis)
	if err != nil {
		return &RepositoryError{Op: "save", Err: err}
	}
	if _, err := r.Store.Put(ctx, key, "application/json", bytes.NewReader(payload)); err != nil {
		return &RepositoryError{Op: "save", Err: err}
	}
	return nil
}

// GetByID reads analyses/<id>.json.
func (r *ObjectRepo) GetByID(ctx context.Context, id string) (Analysis, error) {
	key, ok := objectKey(id)
	if !ok {
		return Analysis{}, ErrNotFound
	}
	body, err := r.Store.Open(ctx, key)
	if errors.Is(err, object.ErrNotFound) {
		return Analysis{}, ErrNotFound
	}
	if err != nil {
		return Analysis{}, &RepositoryError{Op: "get", Err: err}
	}
	defer body.Close()

	var a Analysis
	if err := json.NewDecoder(body).Decode(&a); err != nil {
		return Analysis{}, &RepositoryError{Op: "get", Err: fmt.Errorf("decode %s: %w", key, err)}
	}
	if a.ActionItems == nil {
		a.ActionItems = []string{}
	}
	return a, nil
}

// objectKey maps an id to its storage key. Ids that could escape the prefix are rejected.
func objectKey(id string) (string, bool) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", false
	}
	return objectKeyPrefix + id + ".json", true
}
