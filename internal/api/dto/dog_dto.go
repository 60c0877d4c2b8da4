package dto

import (
	"time"

	"github.com/spec-kit/canine-care-service/internal/domain"
)

// DogCreateRequest is the intake payload for registering a dog.
type DogCreateRequest struct {
	Name             string     `json:"name"`
	Breed            string     `json:"breed"`
	Sex              string     `json:"sex"`
	DateOfBirth      *time.Time `json:"date_of_birth"`
	WeightKG         float64    `json:"weight_kg"`
	DietNotes        string     `json:"diet_notes"`
	EnvironmentNotes string     `json:"environment_notes"`
	BehaviorNotes    string     `json:"behavior_notes"`
	Symptoms         []string   `json:"symptoms"`
}

// DogUpdateRequest carries a partial update; absent fields stay untouched.
type DogUpdateRequest struct {
	Name             *string    `json:"name"`
	Breed            *string    `json:"breed"`
	Sex              *string    `json:"sex"`
	DateOfBirth      *time.Time `json:"date_of_birth"`
	WeightKG         *float64   `json:"weight_kg"`
	DietNotes        *string    `json:"diet_notes"`
	EnvironmentNotes *string    `json:"environment_notes"`
	BehaviorNotes    *string    `json:"behavior_notes"`
	Symptoms         []string   `json:"symptoms"`
}

// DogResponse is the public view of a dog record.
type DogResponse struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Breed            string     `json:"breed"`
	Sex              string     `json:"sex"`
	DateOfBirth      *time.Time `json:"date_of_birth"`
	WeightKG         float64    `json:"weight_kg"`
	DietNotes        string     `json:"diet_notes"`
	EnvironmentNotes string     `json:"environment_notes"`
	BehaviorNotes    string     `json:"behavior_notes"`
	Symptoms         []string   `json:"symptoms"`
	LastProtocolID   *string    `json:"last_protocol_id"`
	LastSubmissionID *string    `json:"last_submission_id"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ReevaluationRequest is the follow-up payload for the selected dog.
type ReevaluationRequest struct {
	Symptoms     []string `json:"symptoms"`
	WeightKG     float64  `json:"weight_kg"`
	DietResponse string   `json:"diet_response"`
	VetFeedback  string   `json:"vet_feedback"`
}

// ProtocolResponse is one protocol version.
type ProtocolResponse struct {
	ID                 string          `json:"id"`
	DogID              string          `json:"dog_id"`
	Version            int             `json:"version"`
	ReplacesProtocolID *string         `json:"replaces_protocol_id"`
	Meals              domain.MealPlan `json:"meals"`
	Supplements        []string        `json:"supplements"`
	LifestyleTips      []string        `json:"lifestyle_tips"`
	CreatedAt          time.Time       `json:"created_at"`
}

// SubmissionResponse is the full view of a diagnosis submission.
type SubmissionResponse struct {
	ID              string                    `json:"id"`
	DogID           string                    `json:"dog_id"`
	UserID          string                    `json:"user_id"`
	Snapshot        domain.DogSnapshot        `json:"snapshot"`
	Input           domain.ReevaluationInput  `json:"input"`
	Diagnosis       domain.Diagnosis          `json:"diagnosis"`
	Priority        domain.SubmissionPriority `json:"priority"`
	ProtocolID      string                    `json:"protocol_id"`
	FinalProtocolID *string                   `json:"final_protocol_id"`
	Status          domain.SubmissionStatus   `json:"status"`
	AssigneeID      *string                   `json:"assignee_id"`
	CreatedAt       time.Time                 `json:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at"`
}
