package flow

import (
	"repairx/domain/state"
)

// Decision is the resolver's answer for one (role, from, to) triple.
type Decision struct {
	Allowed bool
	Reason  string
}

var Allowed = Decision{Allowed: true}

func Denied(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// CheckPermission resolves (actorRole, fromState, toState) against the static
// edge table. pure function: no job instance, no side effects, and total over
// its whole input space since any edge not in the table is denied.
func CheckPermission(role state.Role, fromState, toState string) Decision {
	transition, found := state.RepairMachine.FindTransition(fromState, toState)
	if !found {
		return Denied("no transition from " + fromState + " to " + toState)
	}
	if !transition.Permit(role) {
		return Denied("role " + string(role) + " is not granted transition " + transition.Name)
	}
	return Allowed
}
