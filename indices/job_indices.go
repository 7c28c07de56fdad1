package indices

import (
	"fmt"

	"repairx/domain"
	"repairx/es"
	"repairx/event"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	JobIndexName = "jobs"

	JobIndexEventHandlerName = "jobIndexer"
)

type JobDocument struct {
	domain.Job
}

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

func IndexJobs(jobs []domain.Job) error {
	docs := make([]JobDocument, 0, len(jobs))
	for _, j := range jobs {
		docs = append(docs, JobDocument{Job: j})
	}

	if err := saveJobDocuments(docs); err != nil {
		return err
	}
	return nil
}

func saveJobDocuments(jobDocs []JobDocument) BatchActionError {
	errs := BatchActionError{}

	for _, doc := range jobDocs {
		if err := es.IndexFunc(JobIndexName, doc.ID, doc); err != nil {
			errs[doc.ID] = err
			logrus.Warnf("index job %d %s %s\n", doc.ID, doc.Identifier, err)
		} else {
			logrus.Infof("index job %d %s successfully\n", doc.ID, doc.Identifier)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// IndexJobEventHandle keeps the search index in step with committed job
// events.
func IndexJobEventHandle(e *event.EventRecord) *event.EventHandleResult {
	if e.SourceType != "JOB" {
		return nil
	}

	if e.EventCategory == event.EventCategoryDeleted {
		err := es.DeleteDocumentByIdFunc(JobIndexName, e.Event.SourceId)
		if err != nil {
			return &event.EventHandleResult{
				Message:           fmt.Sprintf("delete job index %d, %v", e.Event.SourceId, err),
				HandlerIdentifier: JobIndexEventHandlerName,
			}
		}
		return &event.EventHandleResult{Success: true, HandlerIdentifier: JobIndexEventHandlerName}
	}

	j, err := LoadJobForIndexFunc(e.Event.SourceId)
	if err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("load job when index job %d, %v", e.Event.SourceId, err),
			HandlerIdentifier: JobIndexEventHandlerName,
		}
	}
	if err := IndexJobs([]domain.Job{*j}); err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("index job %d, %v", e.Event.SourceId, err),
			HandlerIdentifier: JobIndexEventHandlerName,
		}
	}
	return &event.EventHandleResult{Success: true, HandlerIdentifier: JobIndexEventHandlerName}
}
