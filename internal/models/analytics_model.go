package models

// VisitorCounter is the single document in the analytics collection.
type VisitorCounter struct {
	VisitorCount int64 `json:"visitorCount" firestore:"visitorCount"`
}
