package models

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Essay is an application essay draft with its AI critique history.
type Essay struct {
	ID        bson.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	StudentID string        `json:"studentId" bson:"studentId"`
	CollegeID string        `json:"collegeId,omitempty" bson:"collegeId,omitempty"`
	Prompt    string        `json:"prompt" bson:"prompt"`
	Title     string        `json:"title,omitempty" bson:"title,omitempty"`
	Content   string        `json:"content,omitempty" bson:"content,omitempty"`
	WordLimit int           `json:"wordLimit,omitempty" bson:"wordLimit,omitempty"`
	Status    EssayStatus   `json:"status" bson:"status"`
	Critiques []Critique    `json:"critiques,omitempty" bson:"critiques,omitempty"`
	Metadata  Metadata      `json:"metadata" bson:"metadata"`
}

// Critique is one AI review pass over an essay. Suggestions stay pending
// until someone with authority approves them into the draft.
type Critique struct {
	ID          string       `json:"id" bson:"id"`
	Summary     string       `json:"summary" bson:"summary"`
	Suggestions []Suggestion `json:"suggestions,omitempty" bson:"suggestions,omitempty"`
	RequestedBy string       `json:"requestedBy" bson:"requestedBy"`
	CreatedAt   int          `json:"createdAt" bson:"createdAt"`
}

type Suggestion struct {
	ID         string `json:"id" bson:"id"`
	Text       string `json:"text" bson:"text"`
	Approved   bool   `json:"approved" bson:"approved"`
	ApprovedBy string `json:"approvedBy,omitempty" bson:"approvedBy,omitempty"`
	ApprovedAt int    `json:"approvedAt,omitempty" bson:"approvedAt,omitempty"`
}
