package state

type Category uint

const (
	Intake Category = iota
	InProcess
	Acceptance
	Done
	Rejected
	Exception
)

type State struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

// IsTerminal reports whether no transition may ever leave the state.
func (s State) IsTerminal() bool {
	return s.Category == Done || s.Category == Rejected
}

type Role string

const (
	RoleCustomer   = Role("CUSTOMER")
	RoleTechnician = Role("TECHNICIAN")
	RoleOrgManager = Role("ORG_MANAGER")
	RoleOrgOwner   = Role("ORG_OWNER")
	RoleSaasAdmin  = Role("SAAS_ADMIN")
)

var AllRoles = []Role{RoleCustomer, RoleTechnician, RoleOrgManager, RoleOrgOwner, RoleSaasAdmin}

// canonical job states of the repair workflow
var (
	StateCreated          = State{Name: "CREATED", Category: Intake}
	StateInDiagnosis      = State{Name: "IN_DIAGNOSIS", Category: InProcess}
	StateAwaitingApproval = State{Name: "AWAITING_APPROVAL", Category: InProcess}
	StateApproved         = State{Name: "APPROVED", Category: InProcess}
	StateInProgress       = State{Name: "IN_PROGRESS", Category: InProcess}
	StatePartsOrdered     = State{Name: "PARTS_ORDERED", Category: InProcess}
	StateTesting          = State{Name: "TESTING", Category: InProcess}
	StateQualityCheck     = State{Name: "QUALITY_CHECK", Category: InProcess}
	StateCompleted        = State{Name: "COMPLETED", Category: Acceptance}
	StateCustomerApproved = State{Name: "CUSTOMER_APPROVED", Category: Acceptance}
	StateDelivered        = State{Name: "DELIVERED", Category: Done}
	StateCancelled        = State{Name: "CANCELLED", Category: Rejected}
	StateDisputed         = State{Name: "DISPUTED", Category: Exception}
)

var JobStates = []State{
	StateCreated, StateInDiagnosis, StateAwaitingApproval, StateApproved,
	StateInProgress, StatePartsOrdered, StateTesting, StateQualityCheck,
	StateCompleted, StateCustomerApproved, StateDelivered, StateCancelled,
	StateDisputed,
}
