package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task belongs to one project and may be assigned to several users.
type Task struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	Project     *primitive.ObjectID  `bson:"project,omitempty" json:"project,omitempty"`
	Users       []primitive.ObjectID `bson:"users" json:"users"`
	CreatedAt   time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at" json:"updated_at"`
	CreatedBy   *primitive.ObjectID  `bson:"created_by,omitempty" json:"created_by,omitempty"`
}
