package domain

// PlanKey identifies a subscription tier. Tiers are totally ordered by rank.
type PlanKey string

const (
	PlanFoundation    PlanKey = "foundation"
	PlanTherapeutic   PlanKey = "therapeutic"
	PlanComprehensive PlanKey = "comprehensive"
)

var planRanks = map[PlanKey]int{
	PlanFoundation:    1,
	PlanTherapeutic:   2,
	PlanComprehensive: 3,
}

// Rank returns the tier's position in the total order, 0 for unknown keys.
func (p PlanKey) Rank() int {
	return planRanks[p]
}

// Valid reports whether the key names a known tier.
func (p PlanKey) Valid() bool {
	return planRanks[p] != 0
}

// Plan describes one subscription tier as presented to users.
type Plan struct {
	Key         PlanKey
	Name        string
	AmountCents int64
	Features    []string
}

var plans = []Plan{
	{
		Key:         PlanFoundation,
		Name:        "Foundation",
		AmountCents: 2900,
		Features: []string{
			"Personalized meal plan",
			"Quarterly protocol re-evaluation",
			"Progress tracking dashboard",
		},
	},
	{
		Key:         PlanTherapeutic,
		Name:        "Therapeutic",
		AmountCents: 6900,
		Features: []string{
			"Personalized meal plan",
			"Monthly protocol re-evaluation",
			"Progress tracking dashboard",
			"Targeted supplement protocol",
			"Direct messaging with the care team",
		},
	},
	{
		Key:         PlanComprehensive,
		Name:        "Comprehensive",
		AmountCents: 14900,
		Features: []string{
			"Personalized meal plan",
			"Monthly protocol re-evaluation",
			"Progress tracking dashboard",
			"Targeted supplement protocol",
			"Direct messaging with the care team",
			"Priority review of submissions",
			"One-on-one consultation calls",
		},
	},
}

// Plans returns all tiers in ascending rank order.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// PlanByKey looks up a tier definition.
func PlanByKey(key PlanKey) (Plan, bool) {
	for _, p := range plans {
		if p.Key == key {
			return p, true
		}
	}
	return Plan{}, false
}

// PlanRelation classifies a tier relative to the user's current plan.
type PlanRelation string

const (
	PlanRelationCurrent PlanRelation = "current"
	PlanRelationLower   PlanRelation = "lower"
	PlanRelationHigher  PlanRelation = "higher"
)

// ClassifyPlan compares a target tier against the current plan. Without an
// active subscription every tier is treated as a fresh checkout target.
func ClassifyPlan(target, current PlanKey, status SubscriptionStatus) PlanRelation {
	if !status.IsActive() || !current.Valid() {
		return PlanRelationHigher
	}
	switch {
	case target == current:
		return PlanRelationCurrent
	case target.Rank() < current.Rank():
		return PlanRelationLower
	default:
		return PlanRelationHigher
	}
}

// PlanAffordance describes how a plan card behaves for a given user.
type PlanAffordance struct {
	Relation          PlanRelation `json:"relation"`
	Label             string       `json:"label"`
	Disabled          bool         `json:"disabled"`
	NeedsConfirmation bool         `json:"needs_confirmation"`
}

// AffordanceFor derives the button state for one plan card.
func AffordanceFor(target Plan, current PlanKey, status SubscriptionStatus) PlanAffordance {
	switch ClassifyPlan(target.Key, current, status) {
	case PlanRelationCurrent:
		return PlanAffordance{Relation: PlanRelationCurrent, Label: "Current plan", Disabled: true}
	case PlanRelationLower:
		return PlanAffordance{
			Relation:          PlanRelationLower,
			Label:             "Downgrade to " + target.Name,
			NeedsConfirmation: true,
		}
	default:
		return PlanAffordance{Relation: PlanRelationHigher, Label: "Upgrade to " + target.Name}
	}
}

// DowngradeLosses computes the feature diff shown in the downgrade dialog.
// Plain ordered string subtraction, no semantic matching: with no current
// plan every target bullet is framed as a gain.
func DowngradeLosses(current *Plan, target Plan) (losses, gains []string) {
	if current == nil {
		gains = append(gains, target.Features...)
		return nil, gains
	}
	targetSet := make(map[string]struct{}, len(target.Features))
	for _, f := range target.Features {
		targetSet[f] = struct{}{}
	}
	for _, f := range current.Features {
		if _, kept := targetSet[f]; !kept {
			losses = append(losses, f)
		}
	}
	return losses, nil
}
