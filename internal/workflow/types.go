// Package workflow implements the 12-step research session engine:
// the step processor contract, the session state machine, and the
// orchestrator that drives a user through the steps in order.
package workflow

// StepID identifies one research step.
type StepID string

const (
	StepProfile      StepID = "profile"
	StepMacro        StepID = "macro"
	StepSectors      StepID = "sectors"
	StepScreening    StepID = "screening"
	StepFundamentals StepID = "fundamentals"
	StepValuation    StepID = "valuation"
	StepMoat         StepID = "moat"
	StepConsensus    StepID = "consensus"
	StepTechnicals   StepID = "technicals"
	StepPosition     StepID = "position"
	StepExecution    StepID = "execution"
	StepMonitoring   StepID = "monitoring"
)

// stepOrder fixes the numeric sequence; index+1 is the step number.
var stepOrder = []StepID{
	StepProfile,
	StepMacro,
	StepSectors,
	StepScreening,
	StepFundamentals,
	StepValuation,
	StepMoat,
	StepConsensus,
	StepTechnicals,
	StepPosition,
	StepExecution,
	StepMonitoring,
}

// TotalSteps is the length of the fixed workflow.
const TotalSteps = 12

// stepComplete is the current-step value of a finished session.
const stepComplete = TotalSteps + 1

// StepNumber returns the 1-based position of a step, or 0 for an
// unknown id.
func StepNumber(id StepID) int {
	for i, candidate := range stepOrder {
		if candidate == id {
			return i + 1
		}
	}
	return 0
}

// StepAt returns the step id at a 1-based position, or "" when out of
// range.
func StepAt(number int) StepID {
	if number < 1 || number > TotalSteps {
		return ""
	}
	return stepOrder[number-1]
}

// StepIDs returns the steps in execution order.
func StepIDs() []StepID {
	ids := make([]StepID, TotalSteps)
	copy(ids, stepOrder)
	return ids
}
