package state

// Notification describes the message an accepted transition must cause.
type Notification struct {
	Recipient Role   `json:"recipient"`
	Template  string `json:"template"`
}

type Transition struct {
	Name string `json:"name"`
	From State  `json:"from"`
	To   State  `json:"to"`

	Roles          []Role         `json:"roles"`
	RequiredFields []string       `json:"requiredFields"`
	Notifications  []Notification `json:"notifications"`
}

// Permit reports whether the role is granted this edge. the table is total:
// a role not listed is denied.
func (t Transition) Permit(role Role) bool {
	for _, r := range t.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// stateless object, just used for state computing
type Machine struct {
	States      []State      `json:"states"`
	Transitions []Transition `json:"transitions"`
}

func (m *Machine) FindState(name string) (State, bool) {
	for _, s := range m.States {
		if s.Name == name {
			return s, true
		}
	}
	return State{}, false
}

func (m *Machine) FindTransition(fromState, toState string) (Transition, bool) {
	for _, t := range m.Transitions {
		if t.From.Name == fromState && t.To.Name == toState {
			return t, true
		}
	}
	return Transition{}, false
}

func (m *Machine) AvailableTransitions(fromState string) []Transition {
	r := []Transition{}
	for _, t := range m.Transitions {
		if t.From.Name == fromState {
			r = append(r, t)
		}
	}
	return r
}

var technicianAndUp = []Role{RoleTechnician, RoleOrgManager, RoleOrgOwner, RoleSaasAdmin}
var managerAndUp = []Role{RoleOrgManager, RoleOrgOwner, RoleSaasAdmin}

// RepairMachine is the fixed machine every repair job runs on. the exception
// edges (cancel, dispute, reopen) are derived in newRepairMachine so that a
// new state stays an additive change.
var RepairMachine = newRepairMachine()

func newRepairMachine() *Machine {
	transitions := []Transition{
		{Name: "start-diagnosis", From: StateCreated, To: StateInDiagnosis, Roles: technicianAndUp,
			Notifications: []Notification{{Recipient: RoleCustomer, Template: "diagnosis-started"}}},
		{Name: "request-approval", From: StateInDiagnosis, To: StateAwaitingApproval, Roles: technicianAndUp,
			Notifications: []Notification{{Recipient: RoleCustomer, Template: "quote-approval-requested"}}},
		{Name: "approve-quote", From: StateAwaitingApproval, To: StateApproved, Roles: []Role{RoleCustomer, RoleSaasAdmin},
			Notifications: []Notification{{Recipient: RoleTechnician, Template: "work-approved"}}},
		{Name: "start-repair", From: StateApproved, To: StateInProgress, Roles: technicianAndUp,
			Notifications: []Notification{{Recipient: RoleCustomer, Template: "repair-started"}}},
		{Name: "order-parts", From: StateInProgress, To: StatePartsOrdered, Roles: technicianAndUp,
			RequiredFields: []string{"partsOrderRef"},
			Notifications:  []Notification{{Recipient: RoleCustomer, Template: "parts-ordered"}}},
		{Name: "receive-parts", From: StatePartsOrdered, To: StateInProgress, Roles: technicianAndUp,
			RequiredFields: []string{"partsReceived"}},
		{Name: "start-testing", From: StateInProgress, To: StateTesting, Roles: technicianAndUp},
		{Name: "start-quality-check", From: StateTesting, To: StateQualityCheck, Roles: technicianAndUp},
		{Name: "complete", From: StateQualityCheck, To: StateCompleted, Roles: managerAndUp,
			Notifications: []Notification{{Recipient: RoleCustomer, Template: "repair-completed"}}},
		{Name: "accept", From: StateCompleted, To: StateCustomerApproved, Roles: []Role{RoleCustomer, RoleSaasAdmin},
			Notifications: []Notification{{Recipient: RoleOrgManager, Template: "customer-approved"}}},
		{Name: "deliver", From: StateCustomerApproved, To: StateDelivered, Roles: managerAndUp,
			Notifications: []Notification{{Recipient: RoleCustomer, Template: "delivery-receipt"}}},
	}

	for _, s := range JobStates {
		if s.IsTerminal() {
			continue
		}

		cancelRoles := []Role{RoleOrgOwner, RoleSaasAdmin}
		if s == StateCreated || s == StateAwaitingApproval {
			cancelRoles = []Role{RoleCustomer, RoleOrgOwner, RoleSaasAdmin}
		}
		transitions = append(transitions, Transition{
			Name: "cancel", From: s, To: StateCancelled, Roles: cancelRoles,
			RequiredFields: []string{"reason"},
			Notifications: []Notification{
				{Recipient: RoleCustomer, Template: "job-cancelled"},
				{Recipient: RoleOrgManager, Template: "job-cancelled"},
			},
		})

		if s == StateDisputed {
			continue
		}
		transitions = append(transitions, Transition{
			Name: "dispute", From: s, To: StateDisputed, Roles: []Role{RoleCustomer, RoleSaasAdmin},
			RequiredFields: []string{"reason"},
			Notifications:  []Notification{{Recipient: RoleOrgManager, Template: "job-disputed"}},
		})
	}

	// re-open edges: the validator additionally pins the target to the state
	// the dispute was raised from.
	for _, s := range JobStates {
		if s.IsTerminal() || s == StateDisputed {
			continue
		}
		transitions = append(transitions, Transition{
			Name: "reopen", From: StateDisputed, To: s, Roles: managerAndUp,
			Notifications: []Notification{{Recipient: RoleCustomer, Template: "job-reopened"}},
		})
	}

	return &Machine{States: JobStates, Transitions: transitions}
}
