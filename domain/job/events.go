package job

import (
	"repairx/domain"
	"repairx/event"
	"repairx/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

const EventSourceTypeJob = "JOB"

func CreateJobCreatedEvent(j *domain.Job, identity *session.Identity, timestamp types.Timestamp, tx *gorm.DB) (*event.EventRecord, error) {
	return event.CreateEvent(EventSourceTypeJob, j.ID, j.Identifier, event.EventCategoryCreated, nil, identity, timestamp, tx)
}

func CreateJobTransitedEvent(j *domain.Job, fromState, toState string, identity *session.Identity,
	timestamp types.Timestamp, tx *gorm.DB) (*event.EventRecord, error) {

	return event.CreateEvent(EventSourceTypeJob, j.ID, j.Identifier, event.EventCategoryTransited,
		[]event.UpdatedProperty{{
			PropertyName: "StateName", PropertyDesc: "StateName",
			OldValue: fromState, OldValueDesc: fromState,
			NewValue: toState, NewValueDesc: toState,
		}}, identity, timestamp, tx)
}

func CreateJobPropertyUpdatedEvent(j *domain.Job, properties []event.UpdatedProperty,
	identity *session.Identity, timestamp types.Timestamp, tx *gorm.DB) (*event.EventRecord, error) {

	return event.CreateEvent(EventSourceTypeJob, j.ID, j.Identifier, event.EventCategoryPropertyUpdated,
		properties, identity, timestamp, tx)
}
