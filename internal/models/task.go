package models

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Task is a to-do or reminder on a student's application timeline,
// optionally tied to a college.
type Task struct {
	ID              bson.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	StudentID       string        `json:"studentId" bson:"studentId"`
	CollegeID       string        `json:"collegeId,omitempty" bson:"collegeId,omitempty"`
	Title           string        `json:"title" bson:"title"`
	Description     string        `json:"description,omitempty" bson:"description,omitempty"`
	Status          TaskStatus    `json:"status" bson:"status"`
	DueAt           int           `json:"dueAt,omitempty" bson:"dueAt,omitempty"`
	RemindBeforeSec int           `json:"remindBeforeSec,omitempty" bson:"remindBeforeSec,omitempty"`
	ReminderSentAt  int           `json:"reminderSentAt,omitempty" bson:"reminderSentAt,omitempty"`
	CreatedBy       string        `json:"createdBy" bson:"createdBy"`
	Metadata        Metadata      `json:"metadata" bson:"metadata"`
}
