package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// Project groups tasks and the users working on them.
type Project struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	Users       []primitive.ObjectID `bson:"users" json:"users"`
}
