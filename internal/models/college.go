package models

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// College is one entry on a student's application list.
type College struct {
	ID              bson.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	StudentID       string        `json:"studentId" bson:"studentId"`
	Name            string        `json:"name" bson:"name"`
	Location        string        `json:"location,omitempty" bson:"location,omitempty"`
	ApplicationType string        `json:"applicationType,omitempty" bson:"applicationType,omitempty"`
	Deadline        int           `json:"deadline,omitempty" bson:"deadline,omitempty"`
	Status          CollegeStatus `json:"status" bson:"status"`
	Notes           string        `json:"notes,omitempty" bson:"notes,omitempty"`
	Financial       *CollegeCosts `json:"financial,omitempty" bson:"financial,omitempty"`
	Metadata        Metadata      `json:"metadata" bson:"metadata"`
}

// CollegeCosts holds the fields gated behind the viewFinancial capability.
type CollegeCosts struct {
	TuitionPerYear   float64 `json:"tuitionPerYear,omitempty" bson:"tuitionPerYear,omitempty"`
	ApplicationFee   float64 `json:"applicationFee,omitempty" bson:"applicationFee,omitempty"`
	AidOffered       float64 `json:"aidOffered,omitempty" bson:"aidOffered,omitempty"`
	ScholarshipNotes string  `json:"scholarshipNotes,omitempty" bson:"scholarshipNotes,omitempty"`
}

// WithoutFinancial returns a copy safe for viewers lacking viewFinancial.
func (c *College) WithoutFinancial() *College {
	stripped := *c
	stripped.Financial = nil
	return &stripped
}
