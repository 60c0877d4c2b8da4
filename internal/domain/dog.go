package domain

import "time"

// Symptom is a free-form symptom tag collected at intake or re-evaluation.
// Matching against these values is case-insensitive.
type Symptom = string

const (
	SymptomVomiting   Symptom = "vomiting"
	SymptomDiarrhea   Symptom = "diarrhea"
	SymptomLooseStool Symptom = "loose stool"
	SymptomSkinIssues Symptom = "skin issues"
	SymptomItching    Symptom = "itching"
	SymptomLethargy   Symptom = "lethargy"
)

// Dog is the aggregate for one pet under care.
type Dog struct {
	ID      string
	OwnerID string

	Name        string
	Breed       string
	Sex         string
	DateOfBirth *time.Time
	WeightKG    float64

	DietNotes        string
	EnvironmentNotes string
	BehaviorNotes    string
	Symptoms         []string

	// Back-references to the most recently created records, if any exist.
	LastProtocolID   *string
	LastSubmissionID *string

	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DogUpdate carries a partial merge for UpdateDog; nil fields are untouched.
type DogUpdate struct {
	Name             *string
	Breed            *string
	Sex              *string
	DateOfBirth      *time.Time
	WeightKG         *float64
	DietNotes        *string
	EnvironmentNotes *string
	BehaviorNotes    *string
	Symptoms         []string
}

// Apply merges the update into the dog in place.
func (u DogUpdate) Apply(dog *Dog) {
	if u.Name != nil {
		dog.Name = *u.Name
	}
	if u.Breed != nil {
		dog.Breed = *u.Breed
	}
	if u.Sex != nil {
		dog.Sex = *u.Sex
	}
	if u.DateOfBirth != nil {
		dog.DateOfBirth = u.DateOfBirth
	}
	if u.WeightKG != nil {
		dog.WeightKG = *u.WeightKG
	}
	if u.DietNotes != nil {
		dog.DietNotes = *u.DietNotes
	}
	if u.EnvironmentNotes != nil {
		dog.EnvironmentNotes = *u.EnvironmentNotes
	}
	if u.BehaviorNotes != nil {
		dog.BehaviorNotes = *u.BehaviorNotes
	}
	if u.Symptoms != nil {
		dog.Symptoms = u.Symptoms
	}
}
