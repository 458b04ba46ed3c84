package models

// Task represents a place resolution task with an ID and the place id to resolve.
type Task struct {
	ID      int    // ID is the unique identifier for the task.
	PlaceID string // PlaceID is the Google place id attached to the task.
}
