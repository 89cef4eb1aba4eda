package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TimeEntry records work done by a user on a task.
type TimeEntry struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Task        primitive.ObjectID `bson:"task" json:"task"`
	StartTime   time.Time          `bson:"startTime" json:"startTime"`
	EndTime     *time.Time         `bson:"endTime,omitempty" json:"endTime,omitempty"`
	Duration    float64            `bson:"duration" json:"duration"` // never negative
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	User        primitive.ObjectID `bson:"user" json:"user"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
