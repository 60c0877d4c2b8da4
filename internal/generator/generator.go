// Package generator derives updated care protocols and diagnoses from
// re-evaluation input. The derivation is deterministic keyword matching:
// every rule is a (condition, effect) pair applied in fixed order, so each
// one can be unit-tested on its own.
package generator

import (
	"strings"

	"github.com/spec-kit/canine-care-service/internal/domain"
)

// Confidence is fixed; it is not computed from any signal.
const Confidence = 0.85

// Output is the full derivation result for one re-evaluation.
type Output struct {
	Meals         domain.MealPlan
	Supplements   []string
	LifestyleTips []string
	Diagnosis     domain.Diagnosis
	Priority      domain.SubmissionPriority
}

// Derive produces the next protocol content and diagnosis from the prior
// protocol and the re-evaluation input. The diet-response check runs before
// the carry-forward default.
func Derive(prior domain.Protocol, in domain.ReevaluationInput) Output {
	out := Output{
		Meals:         deriveMeals(prior.Meals, in),
		Supplements:   applyListRules(prior.Supplements, supplementRules, in),
		LifestyleTips: applyListRules(prior.LifestyleTips, lifestyleRules, in),
	}
	out.Diagnosis = deriveDiagnosis(in)
	out.Priority = priorityFor(out.Diagnosis.Urgency)
	return out
}

// DefaultProtocolContent is the baseline protocol assigned at intake, before
// any re-evaluation has run.
func DefaultProtocolContent() (domain.MealPlan, []string, []string) {
	meals := domain.MealPlan{
		Breakfast: "Ground turkey with sweet potato and steamed greens",
		Dinner:    "Baked salmon with pumpkin and white rice",
	}
	supplements := []string{
		"Omega-3 fish oil with breakfast",
		"Daily probiotic with dinner",
	}
	tips := []string{
		"Two 20-minute walks per day",
		"Fresh filtered water available at all times",
	}
	return meals, supplements, tips
}

func deriveMeals(prior domain.MealPlan, in domain.ReevaluationInput) domain.MealPlan {
	if dietNotWorking(in.DietResponse) {
		return domain.MealPlan{
			Breakfast: substituteProteins(prior.Breakfast),
			Dinner:    substituteProteins(prior.Dinner),
		}
	}
	return prior
}

func dietNotWorking(dietResponse string) bool {
	text := strings.ToLower(dietResponse)
	return strings.Contains(text, "not working") || strings.Contains(text, "worse")
}

var proteinSubstitutions = strings.NewReplacer(
	"turkey", "chicken",
	"Turkey", "Chicken",
	"salmon", "white fish",
	"Salmon", "White fish",
)

func substituteProteins(meal string) string {
	return proteinSubstitutions.Replace(meal)
}

// listRule appends a note when its condition holds; notes already present
// are not duplicated.
type listRule struct {
	when func(in domain.ReevaluationInput) bool
	note string
}

var supplementRules = []listRule{
	{
		when: func(in domain.ReevaluationInput) bool { return hasSymptom(in.Symptoms, domain.SymptomSkinIssues) },
		note: "Increase omega-3 dosage to support skin and coat",
	},
	{
		when: func(in domain.ReevaluationInput) bool { return hasSymptom(in.Symptoms, domain.SymptomLooseStool) },
		note: "Add a second probiotic dose with the midday meal",
	},
}

var lifestyleRules = []listRule{
	{
		when: func(in domain.ReevaluationInput) bool {
			return strings.Contains(strings.ToLower(in.VetFeedback), "exercise")
		},
		note: "Keep exercise sessions short and consistent while the diet settles",
	},
}

func applyListRules(prior []string, rules []listRule, in domain.ReevaluationInput) []string {
	out := make([]string, len(prior))
	copy(out, prior)
	for _, rule := range rules {
		if rule.when(in) && !contains(out, rule.note) {
			out = append(out, rule.note)
		}
	}
	return out
}

const (
	baselineConcern        = "Dietary sensitivity under active management"
	baselineRecommendation = "Continue the current elimination diet and monitor stool quality"
)

func deriveDiagnosis(in domain.ReevaluationInput) domain.Diagnosis {
	diag := domain.Diagnosis{
		Confidence:      Confidence,
		Concerns:        []string{baselineConcern},
		Recommendations: []string{baselineRecommendation},
		Urgency:         classifyUrgency(in.Symptoms),
	}
	if hasSymptom(in.Symptoms, domain.SymptomVomiting) {
		diag.Concerns = append(diag.Concerns, "Recurrent vomiting warrants close monitoring of meal tolerance")
	}
	if hasSymptom(in.Symptoms, domain.SymptomSkinIssues) {
		diag.Concerns = append(diag.Concerns, "Persistent skin irritation may indicate a protein or environmental allergy")
	}
	if strings.Contains(strings.ToLower(in.DietResponse), "improvement") {
		diag.Recommendations = append(diag.Recommendations, "Maintain the current protein sources given the reported improvement")
	}
	return diag
}

func classifyUrgency(symptoms []string) domain.Urgency {
	if hasSymptom(symptoms, domain.SymptomVomiting) || hasSymptom(symptoms, domain.SymptomDiarrhea) {
		return domain.UrgencyHigh
	}
	if hasSymptom(symptoms, domain.SymptomLooseStool) || hasSymptom(symptoms, domain.SymptomSkinIssues) {
		return domain.UrgencyMedium
	}
	return domain.UrgencyLow
}

// priorityFor keeps the historical mapping: only "urgent" maps to high
// priority, and classifyUrgency never produces "urgent". The narrower
// behavior is preserved on purpose.
func priorityFor(urgency domain.Urgency) domain.SubmissionPriority {
	if urgency == domain.UrgencyUrgent {
		return domain.PriorityHigh
	}
	return domain.PriorityMedium
}

func hasSymptom(symptoms []string, target string) bool {
	for _, s := range symptoms {
		if strings.EqualFold(strings.TrimSpace(s), target) {
			return true
		}
	}
	return false
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
