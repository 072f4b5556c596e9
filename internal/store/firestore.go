package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/moneylog/internal/errs"
)

type snapshotDoc struct {
	Value     string    `firestore:"value"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// firestoreKV keeps the snapshot under devices/{device}/snapshot/{key}, so a
// fresh install on another machine starts from the last known state.
type firestoreKV struct {
	client *firestore.Client
	device string
}

func NewFirestoreKV(client *firestore.Client, device string) *firestoreKV {
	return &firestoreKV{client: client, device: device}
}

func (s *firestoreKV) collection() *firestore.CollectionRef {
	return s.client.Collection("devices").Doc(s.device).Collection("snapshot")
}

func (s *firestoreKV) Get(ctx context.Context, key string) (string, bool, error) {
	doc, err := s.collection().Doc(key).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, errs.NewDatabaseError("get "+key, err)
	}
	var d snapshotDoc
	if err := doc.DataTo(&d); err != nil {
		return "", false, errs.NewDatabaseError("decode "+key, err)
	}
	return d.Value, true, nil
}

func (s *firestoreKV) Set(ctx context.Context, key, value string) error {
	_, err := s.collection().Doc(key).Set(ctx, snapshotDoc{Value: value, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return errs.NewDatabaseError("set "+key, err)
	}
	return nil
}

func (s *firestoreKV) Delete(ctx context.Context, key string) error {
	if _, err := s.collection().Doc(key).Delete(ctx); err != nil {
		return errs.NewDatabaseError("delete "+key, err)
	}
	return nil
}
