package job

import (
	"context"
	"time"

	"repairx/bizerror"
	"repairx/domain"
	"repairx/domain/flow"
	"repairx/domain/state"
	"repairx/event"
	"repairx/idgen"
	"repairx/notify"
	"repairx/persistence"
	"repairx/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/patrickmn/go-cache"
	"github.com/sony/sonyflake"
)

var (
	transitionIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	TransitionJobFunc        = TransitionJob
	QueryTransitionsFunc     = QueryTransitions
	AvailableTransitionsFunc = AvailableTransitions

	// replayed requests return the cached prior result instead of reapplying
	transitionResultCache = cache.New(24*time.Hour, 10*time.Minute)
)

type TransitionResult struct {
	Job        *domain.JobDetail     `json:"job"`
	Transition *domain.JobTransition `json:"transition"`
	Intents    []notify.Intent       `json:"sideEffects"`

	Replayed bool `json:"replayed"`
}

// TransitionJob is the single entry point every state change of a job goes
// through. the plan is computed without I/O, applied with a conditional write
// on (id, version), and notification dispatch happens only after commit.
func TransitionJob(req *domain.TransitionRequest, sec *session.Context) (*TransitionResult, error) {
	if cached, found := lookupIdempotent(req, sec); found {
		return cached, nil
	}

	db := persistence.ActiveDataSourceManager.GormDB(context.Background())

	var result *TransitionResult
	var records []notify.Record
	var ev *event.EventRecord

	err1 := db.Transaction(func(tx *gorm.DB) error {
		jobDetail := domain.JobDetail{}
		if err := tx.Where(&domain.Job{ID: req.JobID}).First(&jobDetail.Job).Error; err != nil {
			return err
		}
		if sec == nil || !sec.HasOrgViewPerm(jobDetail.OrganizationID) {
			return bizerror.ErrForbidden
		}
		role, found := sec.OrgRole(jobDetail.OrganizationID)
		if !found {
			return bizerror.ErrForbidden
		}

		checklist, err := LoadChecklistStatusesFunc(jobDetail.ID, tx)
		if err != nil {
			return err
		}
		jobDetail.Checklist = checklist

		now := types.CurrentTimestamp()
		actor := flow.Actor{ID: sec.Identity.ID, Name: sec.Identity.Name, Role: role}
		plan, err := flow.PlanTransitionFunc(&jobDetail, req, actor, now)
		if err != nil {
			return err
		}

		changes := map[string]interface{}{
			"state_name":       plan.To.Name,
			"state_category":   plan.To.Category,
			"state_begin_time": now,
			"disputed_from":    plan.DisputedFrom,
			"version":          plan.NextVersion,
		}
		if plan.AssignTechnicianID > 0 {
			changes["technician_id"] = plan.AssignTechnicianID
		}

		// the authoritative optimistic check: the update only applies to the
		// exact version the caller saw
		query := tx.Model(&domain.Job{}).
			Where("id = ? AND version = ?", jobDetail.ID, req.ExpectedVersion).
			Update(changes)
		if err := query.Error; err != nil {
			return err
		}
		if query.RowsAffected != 1 {
			return bizerror.ErrConcurrentModification
		}

		transitionRecord := plan.Record
		transitionRecord.ID = idgen.NextID(transitionIdWorker)
		if err := tx.Create(&transitionRecord).Error; err != nil {
			return err
		}

		records, err = notify.CreateRecordsFunc(plan.Intents, now, tx)
		if err != nil {
			return err
		}

		ev, err = CreateJobTransitedEvent(&jobDetail.Job, plan.From.Name, plan.To.Name, &sec.Identity, now, tx)
		if err != nil {
			return err
		}

		updatedJob := domain.JobDetail{}
		if err := tx.Where(&domain.Job{ID: jobDetail.ID}).First(&updatedJob.Job).Error; err != nil {
			return err
		}
		updatedJob.State = plan.To
		updatedJob.Checklist = jobDetail.Checklist

		result = &TransitionResult{Job: &updatedJob, Transition: &transitionRecord, Intents: plan.Intents}
		return nil
	})
	if err1 != nil {
		return nil, err1
	}

	// the transition is authoritative once committed. notifications and index
	// sync are fully decoupled from the caller.
	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	notify.DispatchFunc(records)

	storeIdempotent(req, result)
	return result, nil
}

func idempotencyCacheKey(req *domain.TransitionRequest) string {
	return req.JobID.String() + ":" + req.ToState + ":" + req.IdempotencyKey
}

// lookupIdempotent replays a prior result only to sessions that may see the
// job's organization; everyone else falls through to the guarded path and is
// rejected there.
func lookupIdempotent(req *domain.TransitionRequest, sec *session.Context) (*TransitionResult, bool) {
	if req.IdempotencyKey == "" {
		return nil, false
	}
	value, found := transitionResultCache.Get(idempotencyCacheKey(req))
	if !found {
		return nil, false
	}
	prior, ok := value.(*TransitionResult)
	if !ok {
		return nil, false
	}
	if sec == nil || !sec.HasOrgViewPerm(prior.Job.OrganizationID) {
		return nil, false
	}
	replay := *prior
	replay.Replayed = true
	return &replay, true
}

func storeIdempotent(req *domain.TransitionRequest, result *TransitionResult) {
	if req.IdempotencyKey == "" {
		return
	}
	transitionResultCache.Set(idempotencyCacheKey(req), result, cache.DefaultExpiration)
}

// QueryTransitions lists the append-only history of one job, ordered by
// sequence.
func QueryTransitions(jobId types.ID, sec *session.Context) (*[]domain.JobTransition, error) {
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	if _, err := findJobAndCheckPerms(db, jobId, sec); err != nil {
		return nil, err
	}

	var transitions []domain.JobTransition
	if err := db.Where(&domain.JobTransition{JobID: jobId}).Order("sequence ASC").Find(&transitions).Error; err != nil {
		return nil, err
	}
	return &transitions, nil
}

// AvailableTransitions lists the edges this actor may legally take from the
// job's current state.
func AvailableTransitions(jobId types.ID, sec *session.Context) ([]state.Transition, error) {
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	j, err := findJobAndCheckPerms(db, jobId, sec)
	if err != nil {
		return nil, err
	}
	role, found := sec.OrgRole(j.OrganizationID)
	if !found {
		return nil, bizerror.ErrForbidden
	}

	available := []state.Transition{}
	for _, t := range state.RepairMachine.AvailableTransitions(j.StateName) {
		if !t.Permit(role) {
			continue
		}
		// a dispute only re-opens to the state it was raised from
		if j.StateName == state.StateDisputed.Name && t.To != state.StateCancelled && t.To.Name != j.DisputedFrom {
			continue
		}
		available = append(available, t)
	}
	return available, nil
}
