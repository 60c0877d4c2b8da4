package domain

import "time"

// MealPlan holds the two daily meals as prose instructions.
type MealPlan struct {
	Breakfast string `json:"breakfast"`
	Dinner    string `json:"dinner"`
}

// Protocol is a versioned bundle of meal plan, supplements, and lifestyle
// tips for one dog. Protocols are immutable; a re-evaluation appends a new
// version linked to its predecessor, forming a linear chain per dog.
type Protocol struct {
	ID                 string
	DogID              string
	Version            int
	ReplacesProtocolID *string

	Meals         MealPlan
	Supplements   []string
	LifestyleTips []string

	CreatedAt time.Time
}
