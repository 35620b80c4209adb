package application

import (
	"sort"
	"strings"

	"github.com/bnema/shopvoice/internal/domain"
)

const (
	DefaultConsensusThreshold  = 0.5
	DefaultStepSpreadTolerance = 2.0
	DefaultCautionSuffix       = " (Double-check the result: the assistant was not fully sure about this one.)"
)

// Combiner merges the plans of several backends into one.
type Combiner struct {
	// ConsensusThreshold is the minimum share of successful backends that must
	// agree on the user feedback for it to replace the primary's.
	ConsensusThreshold float64
	// StepSpreadTolerance is how far any step count may sit from the mean before
	// the plans are considered inconsistent.
	StepSpreadTolerance float64
	CautionSuffix       string
}

func NewCombiner() Combiner {
	return Combiner{
		ConsensusThreshold:  DefaultConsensusThreshold,
		StepSpreadTolerance: DefaultStepSpreadTolerance,
		CautionSuffix:       DefaultCautionSuffix,
	}
}

type Combination struct {
	Result     domain.PlanResult
	Consistent bool
	Consensus  bool
}

// Combine picks the heaviest successful plan as primary, overrides its feedback
// with the majority feedback when enough backends agree, and appends a caution
// when the step counts diverge. The output does not depend on invocation order.
func (c Combiner) Combine(invocations []domain.ModelInvocation) Combination {
	successful := make([]domain.ModelInvocation, 0, len(invocations))
	for _, inv := range invocations {
		if inv.Success {
			successful = append(successful, inv)
		}
	}

	switch len(successful) {
	case 0:
		return Combination{
			Result: domain.PlanResult{
				Status: domain.PlanDegraded,
				Plan:   FallbackPlan(),
				Reason: "no model backend succeeded",
			},
		}
	case 1:
		return Combination{
			Result:     resultFor(successful[0], successful[0].Plan),
			Consistent: true,
			Consensus:  true,
		}
	}

	sort.SliceStable(successful, func(i, j int) bool {
		if successful[i].Model.Weight != successful[j].Model.Weight {
			return successful[i].Model.Weight > successful[j].Model.Weight
		}
		return successful[i].Model.ID < successful[j].Model.ID
	})

	primary := successful[0]
	plan := clonePlan(primary.Plan)

	// Plans that failed to parse carry placeholder feedback and no steps; they
	// neither vote nor count toward the step spread.
	voters := make([]domain.ModelInvocation, 0, len(successful))
	for _, inv := range successful {
		if !inv.ParseDegraded {
			voters = append(voters, inv)
		}
	}

	consensus := false
	if feedback, share := majorityFeedback(voters); share >= c.threshold() && feedback != "" {
		plan.Feedback = feedback
		consensus = true
	}

	consistent := c.stepCountsConsistent(voters)
	if !consistent {
		plan.Feedback = strings.TrimRight(plan.Feedback, " ") + c.CautionSuffix
	}

	return Combination{
		Result:     resultFor(primary, plan),
		Consistent: consistent,
		Consensus:  consensus,
	}
}

func (c Combiner) threshold() float64 {
	if c.ConsensusThreshold <= 0 {
		return DefaultConsensusThreshold
	}
	return c.ConsensusThreshold
}

func (c Combiner) stepCountsConsistent(invocations []domain.ModelInvocation) bool {
	if len(invocations) == 0 {
		return true
	}

	tolerance := c.StepSpreadTolerance
	if tolerance <= 0 {
		tolerance = DefaultStepSpreadTolerance
	}

	var total float64
	for _, inv := range invocations {
		total += float64(len(inv.Plan.Steps))
	}
	mean := total / float64(len(invocations))

	for _, inv := range invocations {
		diff := float64(len(inv.Plan.Steps)) - mean
		if diff < 0 {
			diff = -diff
		}
		if diff > tolerance {
			return false
		}
	}
	return true
}

// majorityFeedback returns the most frequent feedback string and its share.
// invocations must be in weight order; ties go to the heaviest backend.
func majorityFeedback(invocations []domain.ModelInvocation) (string, float64) {
	if len(invocations) == 0 {
		return "", 0
	}

	counts := make(map[string]int, len(invocations))
	for _, inv := range invocations {
		counts[inv.Plan.Feedback]++
	}

	var (
		best      string
		bestCount int
	)
	for _, inv := range invocations {
		if count := counts[inv.Plan.Feedback]; count > bestCount {
			best, bestCount = inv.Plan.Feedback, count
		}
	}

	return best, float64(bestCount) / float64(len(invocations))
}

func resultFor(primary domain.ModelInvocation, plan domain.Plan) domain.PlanResult {
	if primary.ParseDegraded {
		return domain.PlanResult{
			Status: domain.PlanDegraded,
			Plan:   plan,
			Reason: "model " + string(primary.Model.ID) + " returned an unusable plan",
		}
	}
	return domain.PlanResult{Status: domain.PlanOK, Plan: plan}
}

func clonePlan(plan domain.Plan) domain.Plan {
	out := plan
	out.Steps = append([]domain.Step(nil), plan.Steps...)
	if out.Steps == nil {
		out.Steps = []domain.Step{}
	}
	return out
}
