package domain

import (
	"repairx/domain/state"

	"github.com/fundwit/go-commons/types"
)

// Job is the central entity. its StateName is only ever changed through
// job.TransitionJob, guarded by the optimistic Version token.
type Job struct {
	ID         types.ID `json:"id" gorm:"primary_key"`
	Identifier string   `json:"identifier"`
	Title      string   `json:"title"`
	DeviceDesc string   `json:"deviceDesc"`

	OrganizationID types.ID `json:"organizationId"`
	CustomerID     types.ID `json:"customerId"`
	TechnicianID   types.ID `json:"technicianId"`

	StateName      string          `json:"stateName"`
	StateCategory  state.Category  `json:"stateCategory"`
	StateBeginTime types.Timestamp `json:"stateBeginTime" sql:"type:DATETIME(6)"`

	// the state a live dispute was raised from, empty otherwise
	DisputedFrom string `json:"disputedFrom"`

	Version int `json:"version"`

	CreateTime  types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	ArchiveTime types.Timestamp `json:"archiveTime" sql:"type:DATETIME(6)"`

	State state.State `json:"state" gorm:"-"`
}

func (j *Job) TableName() string {
	return "jobs"
}

type ChecklistItemStatus struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
}

type JobDetail struct {
	Job

	Checklist []ChecklistItemStatus `json:"checklist" gorm:"-"`
}

type JobCreation struct {
	Title          string   `json:"title" binding:"required"`
	DeviceDesc     string   `json:"deviceDesc"`
	OrganizationID types.ID `json:"organizationId" binding:"required"`
	CustomerID     types.ID `json:"customerId" binding:"required"`
}

type JobQuery struct {
	OrganizationID  types.ID         `json:"organizationId" form:"organizationId"`
	Title           string           `json:"title" form:"title"`
	StateCategories []state.Category `json:"stateCategories" form:"stateCategory"`
	ArchiveState    string           `json:"archiveState" form:"archiveState"`
}

const (
	StatusOn  = "on"
	StatusOff = "off"
	StatusAll = "all"
)

type TechnicianAssignment struct {
	TechnicianID types.ID `json:"technicianId" binding:"required"`
}
