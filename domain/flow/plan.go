package flow

import (
	"repairx/bizerror"
	"repairx/domain"
	"repairx/domain/state"
	"repairx/notify"

	"github.com/fundwit/go-commons/types"
)

type Actor struct {
	ID   types.ID
	Name string
	Role state.Role
}

// TransitionPlan is the engine's answer: what must change on the job record
// and what must happen afterwards. computing it performs no I/O, so the whole
// state machine is testable without a database or a gateway.
type TransitionPlan struct {
	Transition state.Transition
	From, To   state.State

	NextVersion  int
	DisputedFrom string

	// nonzero when the payload assigns a technician on the way in
	AssignTechnicianID types.ID

	Record  domain.JobTransition
	Intents []notify.Intent
}

var PlanTransitionFunc = PlanTransition

// PlanTransition checks version, structural validity and permission in that
// order, then computes the resulting history entry and notification intents.
// an edge missing from the machine fails validation for every role, so a
// permission denial always names an edge that actually exists.
func PlanTransition(job *domain.JobDetail, req *domain.TransitionRequest, actor Actor,
	now types.Timestamp) (*TransitionPlan, error) {

	if req.ExpectedVersion != job.Version {
		return nil, bizerror.ErrConcurrentModification
	}

	if validationErr := ValidateTransition(job, req.ToState, req.Payload); validationErr != nil {
		return nil, validationErr
	}

	if decision := CheckPermission(actor.Role, job.StateName, req.ToState); !decision.Allowed {
		return nil, bizerror.ErrForbidden
	}

	transition, _ := state.RepairMachine.FindTransition(job.StateName, req.ToState)

	plan := TransitionPlan{
		Transition:  transition,
		From:        transition.From,
		To:          transition.To,
		NextVersion: job.Version + 1,
	}

	if transition.To == state.StateDisputed {
		plan.DisputedFrom = job.StateName
	}

	if technicianParam := req.Payload["technicianId"]; technicianParam != "" {
		technicianId, err := types.ParseID(technicianParam)
		if err != nil {
			return nil, &bizerror.ErrBadParam{Cause: err}
		}
		plan.AssignTechnicianID = technicianId
	}

	plan.Record = domain.JobTransition{
		JobID:          job.ID,
		OrganizationID: job.OrganizationID,
		Sequence:       plan.NextVersion,
		FromState:      transition.From.Name,
		ToState:        transition.To.Name,
		ActorID:        actor.ID,
		ActorRole:      actor.Role,
		Reason:         req.Reason,
		Payload:        req.Payload,
		CreateTime:     now,
	}

	variables := notify.Variables{
		"jobIdentifier": job.Identifier,
		"title":         job.Title,
		"fromState":     transition.From.Name,
		"toState":       transition.To.Name,
	}
	if req.Reason != "" {
		variables["reason"] = req.Reason
	}
	for _, notification := range transition.Notifications {
		plan.Intents = append(plan.Intents, notify.Intent{
			JobID:         job.ID,
			JobIdentifier: job.Identifier,
			Recipient:     notification.Recipient,
			Template:      notification.Template,
			Variables:     variables,
		})
	}

	return &plan, nil
}
