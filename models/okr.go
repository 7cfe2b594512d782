package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CategoryIndividual = "Individual"
	CategoryTeam       = "Team"
)

const (
	StatusNotStarted = "Not Started"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

var Categories = []string{CategoryIndividual, CategoryTeam}

type Objective struct {
	ID          primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Title       string               `json:"title" bson:"title"`
	TitleKey    string               `json:"-" bson:"title_key"`
	Description string               `json:"description" bson:"description"`
	StartDate   time.Time            `json:"start_date" bson:"start_date"`
	EndDate     time.Time            `json:"end_date" bson:"end_date"`
	Department  string               `json:"department" bson:"department"`
	Category    string               `json:"category" bson:"category"`
	Owners      []primitive.ObjectID `json:"owners" bson:"owners"`
	CreatedBy   primitive.ObjectID   `json:"created_by" bson:"created_by"`
	KeyResults  []KeyResult          `json:"key_results" bson:"key_results"`
	Progress    int                  `json:"progress" bson:"progress"`
	Status      string               `json:"status" bson:"status"`
	Metadata    Metadata             `json:"metadata" bson:"metadata"`
}

type KeyResult struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title        string             `json:"title" bson:"title"`
	CurrentValue float64            `json:"current_value" bson:"current_value"`
	TargetValue  float64            `json:"target_value" bson:"target_value"`
	Progress     int                `json:"progress" bson:"progress"`
}

type Metadata struct {
	UpdatedBy primitive.ObjectID `json:"updated_by" bson:"updated_by"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// HasOwner reports whether id is listed among the objective's owners.
func (o *Objective) HasOwner(id primitive.ObjectID) bool {
	for _, owner := range o.Owners {
		if owner == id {
			return true
		}
	}
	return false
}

func ValidCategory(category string) bool {
	return contains(Categories, category)
}
