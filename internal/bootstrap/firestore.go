package bootstrap

import (
	"context"

	"cloud.google.com/go/firestore"
)

func InitFirestore(ctx context.Context, projectID, database string) (*firestore.Client, error) {
	if database == "" {
		database = firestore.DefaultDatabaseID
	}
	return firestore.NewClientWithDatabase(ctx, projectID, database)
}
