package domain

import "time"

// SubmissionStatus enumerates review lifecycle states for a submission.
type SubmissionStatus string

const (
	SubmissionPending       SubmissionStatus = "pending"
	SubmissionUnderReview   SubmissionStatus = "under_review"
	SubmissionApproved      SubmissionStatus = "approved"
	SubmissionRejected      SubmissionStatus = "rejected"
	SubmissionNeedsRevision SubmissionStatus = "needs_revision"
)

// Urgency classifies how quickly a submission should be reviewed.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
	UrgencyUrgent Urgency = "urgent"
)

// SubmissionPriority is the queue priority derived from urgency.
type SubmissionPriority string

const (
	PriorityMedium SubmissionPriority = "medium"
	PriorityHigh   SubmissionPriority = "high"
)

// Diagnosis is the generated assessment attached to a submission.
type Diagnosis struct {
	Confidence      float64  `json:"confidence"`
	Concerns        []string `json:"concerns"`
	Recommendations []string `json:"recommendations"`
	Urgency         Urgency  `json:"urgency"`
}

// DogSnapshot freezes the dog's state at submission time.
type DogSnapshot struct {
	Name     string   `json:"name"`
	Breed    string   `json:"breed"`
	WeightKG float64  `json:"weight_kg"`
	Symptoms []string `json:"symptoms"`
}

// ReevaluationInput is one intake or follow-up event as submitted.
type ReevaluationInput struct {
	Symptoms     []string `json:"symptoms"`
	WeightKG     float64  `json:"weight_kg"`
	DietResponse string   `json:"diet_response"`
	VetFeedback  string   `json:"vet_feedback"`
}

// DiagnosisSubmission records one intake or re-evaluation event. The snapshot
// and diagnosis are immutable; only review status, assignment, and the final
// protocol choice are mutated by staff.
type DiagnosisSubmission struct {
	ID     string
	DogID  string
	UserID string

	Snapshot  DogSnapshot
	Input     ReevaluationInput
	Diagnosis Diagnosis
	Priority  SubmissionPriority

	// ProtocolID points at the generated protocol; staff may override the
	// final choice during review.
	ProtocolID      string
	FinalProtocolID *string

	Status     SubmissionStatus
	AssigneeID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

var allowedSubmissionTransitions = map[SubmissionStatus][]SubmissionStatus{
	SubmissionPending:       {SubmissionUnderReview, SubmissionApproved, SubmissionRejected},
	SubmissionUnderReview:   {SubmissionApproved, SubmissionRejected, SubmissionNeedsRevision},
	SubmissionNeedsRevision: {SubmissionUnderReview, SubmissionApproved, SubmissionRejected},
	SubmissionApproved:      {},
	SubmissionRejected:      {},
}

// ValidSubmissionTransition reports whether a status change is allowed.
func ValidSubmissionTransition(current, next SubmissionStatus) bool {
	for _, candidate := range allowedSubmissionTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
