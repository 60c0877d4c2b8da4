package domain

import (
	"reflect"
	"testing"
)

func TestClassifyPlan(t *testing.T) {
	tests := []struct {
		name    string
		target  PlanKey
		current PlanKey
		status  SubscriptionStatus
		want    PlanRelation
	}{
		{"same plan", PlanTherapeutic, PlanTherapeutic, SubscriptionActive, PlanRelationCurrent},
		{"lower rank", PlanFoundation, PlanTherapeutic, SubscriptionActive, PlanRelationLower},
		{"higher rank", PlanComprehensive, PlanTherapeutic, SubscriptionActive, PlanRelationHigher},
		{"trialing counts as active", PlanFoundation, PlanComprehensive, SubscriptionTrialing, PlanRelationLower},
		{"canceled treats all as fresh", PlanFoundation, PlanComprehensive, SubscriptionCanceled, PlanRelationHigher},
		{"no current plan", PlanFoundation, "", SubscriptionActive, PlanRelationHigher},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyPlan(tt.target, tt.current, tt.status); got != tt.want {
				t.Fatalf("ClassifyPlan(%q, %q, %q) = %q, want %q", tt.target, tt.current, tt.status, got, tt.want)
			}
		})
	}
}

func TestAffordanceLabels(t *testing.T) {
	therapeutic, _ := PlanByKey(PlanTherapeutic)

	current := AffordanceFor(therapeutic, PlanTherapeutic, SubscriptionActive)
	if current.Label != "Current plan" || !current.Disabled {
		t.Fatalf("current affordance = %+v", current)
	}

	down := AffordanceFor(therapeutic, PlanComprehensive, SubscriptionActive)
	if down.Label != "Downgrade to Therapeutic" || !down.NeedsConfirmation || down.Disabled {
		t.Fatalf("downgrade affordance = %+v", down)
	}

	up := AffordanceFor(therapeutic, PlanFoundation, SubscriptionActive)
	if up.Label != "Upgrade to Therapeutic" || up.NeedsConfirmation || up.Disabled {
		t.Fatalf("upgrade affordance = %+v", up)
	}
}

func TestDowngradeLosses(t *testing.T) {
	comprehensive, _ := PlanByKey(PlanComprehensive)
	foundation, _ := PlanByKey(PlanFoundation)

	losses, gains := DowngradeLosses(&comprehensive, foundation)
	if gains != nil {
		t.Fatalf("gains = %v, want none when a current plan exists", gains)
	}
	// Plain list subtraction in the current plan's order. Bullets that vary
	// only in wording are treated as different features.
	want := []string{
		"Monthly protocol re-evaluation",
		"Targeted supplement protocol",
		"Direct messaging with the care team",
		"Priority review of submissions",
		"One-on-one consultation calls",
	}
	if !reflect.DeepEqual(losses, want) {
		t.Fatalf("losses = %v, want %v", losses, want)
	}
}

func TestDowngradeLossesWithoutCurrentPlan(t *testing.T) {
	foundation, _ := PlanByKey(PlanFoundation)
	losses, gains := DowngradeLosses(nil, foundation)
	if losses != nil {
		t.Fatalf("losses = %v, want none without a current plan", losses)
	}
	if !reflect.DeepEqual(gains, foundation.Features) {
		t.Fatalf("gains = %v, want every target feature", gains)
	}
}

func TestValidSubmissionTransition(t *testing.T) {
	tests := []struct {
		from, to SubmissionStatus
		want     bool
	}{
		{SubmissionPending, SubmissionUnderReview, true},
		{SubmissionPending, SubmissionApproved, true},
		{SubmissionPending, SubmissionNeedsRevision, false},
		{SubmissionUnderReview, SubmissionNeedsRevision, true},
		{SubmissionNeedsRevision, SubmissionUnderReview, true},
		{SubmissionApproved, SubmissionRejected, false},
		{SubmissionRejected, SubmissionPending, false},
	}
	for _, tt := range tests {
		if got := ValidSubmissionTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("ValidSubmissionTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
