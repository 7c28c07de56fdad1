package notify

import (
	"context"
	"time"

	"repairx/domain/state"
	"repairx/idgen"
	"repairx/persistence"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

// Record is the durable redelivery queue of notification intents. records are
// created in the same transaction as the transition they belong to, so a
// committed transition never loses its notifications, whatever the gateway
// does afterwards.
type Record struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	JobID         types.ID   `json:"jobId" gorm:"index:for_job"`
	JobIdentifier string     `json:"jobIdentifier"`
	Recipient     state.Role `json:"recipientRole"`
	Template      string     `json:"template"`
	Variables     Variables  `json:"variables" sql:"type:TEXT"`

	Attempts  int  `json:"attempts"`
	Delivered bool `json:"delivered"`
	Abandoned bool `json:"abandoned"`

	NextAttemptTime types.Timestamp `json:"nextAttemptTime" sql:"type:DATETIME(6)"`
	DeliveredTime   types.Timestamp `json:"deliveredTime" sql:"type:DATETIME(6)"`
	CreateTime      types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (r *Record) TableName() string {
	return "notifications"
}

var (
	recordIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateRecordsFunc     = CreateRecords
	LoadDueRecordsFunc    = LoadDueRecords
	FinishRecordFunc      = FinishRecord
	DelayRecordFunc       = DelayRecord
	AbandonRecordFunc     = AbandonRecord
	RecordPersistSaveFunc = recordPersistSave
)

func CreateRecords(intents []Intent, timestamp types.Timestamp, tx *gorm.DB) ([]Record, error) {
	records := make([]Record, 0, len(intents))
	for _, intent := range intents {
		record := Record{
			ID:            idgen.NextID(recordIdWorker),
			JobID:         intent.JobID,
			JobIdentifier: intent.JobIdentifier,
			Recipient:     intent.Recipient,
			Template:      intent.Template,
			Variables:     intent.Variables,

			NextAttemptTime: timestamp,
			CreateTime:      timestamp,
		}
		if err := RecordPersistSaveFunc(&record, tx); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func recordPersistSave(record *Record, tx *gorm.DB) error {
	return tx.Create(record).Error
}

func FinishRecord(id types.ID) error {
	changes := map[string]interface{}{"delivered": true, "delivered_time": types.CurrentTimestamp()}
	return persistence.ActiveDataSourceManager.GormDB(context.Background()).
		Model(&Record{}).Where("id = ?", id).Update(changes).Error
}

// DelayRecord schedules the next attempt with exponential backoff.
func DelayRecord(id types.ID, attempts int, backoff time.Duration) error {
	next := types.Timestamp(time.Now().Add(backoff))
	changes := map[string]interface{}{"attempts": attempts, "next_attempt_time": next}
	return persistence.ActiveDataSourceManager.GormDB(context.Background()).
		Model(&Record{}).Where("id = ?", id).Update(changes).Error
}

func AbandonRecord(id types.ID, attempts int) error {
	changes := map[string]interface{}{"attempts": attempts, "abandoned": true}
	return persistence.ActiveDataSourceManager.GormDB(context.Background()).
		Model(&Record{}).Where("id = ?", id).Update(changes).Error
}

func LoadDueRecords(page, size int) ([]Record, error) {
	records := []Record{}
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	offset := (page - 1) * size
	if offset < 0 {
		offset = 0
	}
	if err := db.Where("delivered = ? AND abandoned = ? AND next_attempt_time <= ?",
		false, false, types.CurrentTimestamp()).
		Order("id ASC").Offset(offset).Limit(size).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
