package models

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Activity is an extracurricular entry or honor on a student's record.
// Honors reuse the same document with Kind set to "honor".
type Activity struct {
	ID           bson.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	StudentID    string        `json:"studentId" bson:"studentId"`
	Kind         string        `json:"kind" bson:"kind"` // "activity" or "honor"
	Title        string        `json:"title" bson:"title"`
	Role         string        `json:"role,omitempty" bson:"role,omitempty"`
	Description  string        `json:"description,omitempty" bson:"description,omitempty"`
	YearsActive  []int         `json:"yearsActive,omitempty" bson:"yearsActive,omitempty"`
	HoursPerWeek int           `json:"hoursPerWeek,omitempty" bson:"hoursPerWeek,omitempty"`
	Level        string        `json:"level,omitempty" bson:"level,omitempty"` // school, regional, national
	Metadata     Metadata      `json:"metadata" bson:"metadata"`
}

const (
	ActivityKindActivity = "activity"
	ActivityKindHonor    = "honor"
)
