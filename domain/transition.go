package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"repairx/domain/state"

	"github.com/fundwit/go-commons/types"
)

// TransitionPayload carries edge specific inputs, like partsOrderRef or a
// quality check confirmation.
type TransitionPayload map[string]string

func (t TransitionPayload) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (t *TransitionPayload) Scan(v interface{}) error {
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	return json.Unmarshal([]byte(jsonString), t)
}

// JobTransition is the append-only history of a job. Sequence equals the job
// Version the transition produced, so version == count of history rows holds
// after every accepted transition.
type JobTransition struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	JobID          types.ID `json:"jobId" gorm:"index:for_job"`
	OrganizationID types.ID `json:"organizationId"`
	Sequence       int      `json:"sequence"`

	FromState string `json:"fromState"`
	ToState   string `json:"toState"`

	ActorID   types.ID   `json:"actorId"`
	ActorRole state.Role `json:"actorRole"`
	Reason    string     `json:"reason"`

	Payload TransitionPayload `json:"payload" sql:"type:TEXT"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (t *JobTransition) TableName() string {
	return "job_transitions"
}

type TransitionRequest struct {
	// set from the request path, never from the body
	JobID types.ID `json:"-"`

	ToState         string `json:"toState" binding:"required"`
	ExpectedVersion int    `json:"expectedVersion" binding:"min=0"`

	Reason         string            `json:"reason"`
	Payload        TransitionPayload `json:"payload"`
	IdempotencyKey string            `json:"idempotencyKey"`
}
