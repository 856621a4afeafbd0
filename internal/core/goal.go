package core

// MonthsRemaining counts whole calendar months between today's month and
// the deadline's month. Zero or negative means the goal is due this
// month or overdue.
func MonthsRemaining(deadline, today Date) int {
	return (deadline.Year()-today.Year())*12 + int(deadline.Month()) - int(today.Month())
}

// RequiredMonthlyContribution returns the monthly amount needed to close
// the gap between current and target by the deadline. When the deadline
// is this month or already past, no forward-looking contribution is
// computable and the result is zero — a policy choice, not an error.
// The result is negative when the goal is already overachieved; callers
// must surface that rather than clamp it silently.
func RequiredMonthlyContribution(goal Goal, today Date) Money {
	months := MonthsRemaining(goal.Deadline, today)
	if months <= 0 {
		return Money{}
	}
	gap := goal.TargetAmount.Sub(goal.CurrentAmount)
	return Money{Cents: divRound(gap.Cents, int64(months))}
}

// GoalScenario describes an accelerated goal timeline under an extra
// monthly contribution.
type GoalScenario struct {
	GoalID         string
	GoalName       string
	MonthsSaved    int
	NewDeadline    Date
	MonthlyPayment Money // original required rate plus the extra
}

// SimulateExtra computes how much sooner a goal completes when extraMonthly
// is added to the original required rate. The simulation is undefined for
// goals without a derivable monthly rate (deadline this month or past, or
// gap already closed); those return ok=false and must be excluded from
// results rather than producing a nonsensical date.
func SimulateExtra(goal Goal, extraMonthly Money, today Date) (GoalScenario, bool) {
	months := MonthsRemaining(goal.Deadline, today)
	if months <= 0 {
		return GoalScenario{}, false
	}
	gap := goal.TargetAmount.Sub(goal.CurrentAmount)
	if gap.Cents <= 0 {
		return GoalScenario{}, false
	}
	base := divRound(gap.Cents, int64(months))
	rate := base + extraMonthly.Cents
	if rate <= 0 {
		return GoalScenario{}, false
	}
	// Months needed at the boosted rate, rounded up.
	needed := int((gap.Cents + rate - 1) / rate)
	if needed < 1 {
		needed = 1
	}
	saved := months - needed
	if saved < 0 {
		saved = 0
	}
	return GoalScenario{
		GoalID:         goal.ID,
		GoalName:       goal.Name,
		MonthsSaved:    saved,
		NewDeadline:    goal.Deadline.AddMonths(-saved),
		MonthlyPayment: Money{Cents: rate},
	}, true
}
