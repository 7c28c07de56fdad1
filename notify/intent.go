package notify

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"repairx/domain/state"

	"github.com/fundwit/go-commons/types"
)

// Intent is what an accepted transition asks the notification gateway to
// send. the state machine only ever emits intents, the dispatcher does the
// I/O.
type Intent struct {
	JobID         types.ID   `json:"jobId"`
	JobIdentifier string     `json:"jobIdentifier"`
	Recipient     state.Role `json:"recipientRole"`
	Template      string     `json:"template"`
	Variables     Variables  `json:"variables"`
}

type Variables map[string]string

func (t Variables) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (t *Variables) Scan(v interface{}) error {
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
