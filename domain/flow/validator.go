package flow

import (
	"repairx/bizerror"
	"repairx/domain"
	"repairx/domain/state"
)

// ValidateTransition confirms the requested transition is structurally legal
// for this job instance, beyond role permission. fail-fast: the first unmet
// condition is returned, nothing is aggregated.
func ValidateTransition(job *domain.JobDetail, toState string, payload domain.TransitionPayload) *bizerror.ValidationError {
	from, found := state.RepairMachine.FindState(job.StateName)
	if !found {
		return &bizerror.ValidationError{Code: bizerror.ValidationUnknownState, Field: "stateName"}
	}
	to, found := state.RepairMachine.FindState(toState)
	if !found {
		return &bizerror.ValidationError{Code: bizerror.ValidationUnknownState, Field: "toState"}
	}
	if from.IsTerminal() {
		return &bizerror.ValidationError{Code: bizerror.ValidationTerminalState, Field: "stateName"}
	}

	transition, found := state.RepairMachine.FindTransition(from.Name, to.Name)
	if !found {
		return &bizerror.ValidationError{Code: bizerror.ValidationIllegalEdge}
	}

	// a dispute only re-opens to the exact state it was raised from
	if from == state.StateDisputed && to != state.StateCancelled && to.Name != job.DisputedFrom {
		return &bizerror.ValidationError{Code: bizerror.ValidationIllegalReopenTarget, Field: "toState"}
	}

	for _, field := range transition.RequiredFields {
		if payload[field] == "" {
			return &bizerror.ValidationError{Code: bizerror.ValidationMissingField, Field: field}
		}
	}

	// every edge after IN_DIAGNOSIS is technician driven, so one must be on
	// the job before diagnosis starts
	if from == state.StateCreated && to == state.StateInDiagnosis &&
		job.TechnicianID == 0 && payload["technicianId"] == "" {
		return &bizerror.ValidationError{Code: bizerror.ValidationTechnicianRequired, Field: "technicianId"}
	}

	if from == state.StateQualityCheck && to == state.StateCompleted {
		if len(job.Checklist) == 0 {
			return &bizerror.ValidationError{Code: bizerror.ValidationIncompleteChecklist, Field: "qualityChecklist"}
		}
		for _, item := range job.Checklist {
			if !item.Passed {
				return &bizerror.ValidationError{Code: bizerror.ValidationIncompleteChecklist, Field: "qualityChecklist"}
			}
		}
	}

	return nil
}
