package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"wheelsup-backend-go/internal/models"
)

const (
	analyticsCollection = "analytics"
	visitorCounterDoc   = "visitorCounter"
)

type firestoreAnalyticsRepository struct {
	client *firestore.Client
}

// NewFirestoreAnalyticsRepository creates the visitor counter repository.
func NewFirestoreAnalyticsRepository(client *firestore.Client) AnalyticsRepository {
	if client == nil {
		panic("Firestore client is not initialized for AnalyticsRepository")
	}
	return &firestoreAnalyticsRepository{client: client}
}

func (r *firestoreAnalyticsRepository) counterRef() *firestore.DocumentRef {
	return r.client.Collection(analyticsCollection).Doc(visitorCounterDoc)
}

func (r *firestoreAnalyticsRepository) read(ctx context.Context) (int64, error) {
	snap, err := r.counterRef().Get(ctx)
	if err != nil {
		return 0, err
	}
	var counter models.VisitorCounter
	if err := snap.DataTo(&counter); err != nil {
		return 0, fmt.Errorf("failed to decode visitor counter: %w", err)
	}
	return counter.VisitorCount, nil
}

func (r *firestoreAnalyticsRepository) VisitorCount(ctx context.Context) (int64, error) {
	count, err := r.read(ctx)
	if err == nil {
		return count, nil
	}
	if status.Code(err) != codes.NotFound {
		return 0, fmt.Errorf("failed to read visitor counter: %w", err)
	}
	_, err = r.counterRef().Create(ctx, models.VisitorCounter{VisitorCount: 0})
	if err != nil && status.Code(err) != codes.AlreadyExists {
		return 0, fmt.Errorf("failed to initialize visitor counter: %w", err)
	}
	return 0, nil
}

func (r *firestoreAnalyticsRepository) IncrementVisitors(ctx context.Context) (int64, error) {
	_, err := r.counterRef().Set(ctx, map[string]interface{}{
		"visitorCount": firestore.Increment(1),
	}, firestore.MergeAll)
	if err != nil {
		return 0, fmt.Errorf("failed to increment visitor counter: %w", err)
	}
	count, err := r.read(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read visitor counter after increment: %w", err)
	}
	return count, nil
}
