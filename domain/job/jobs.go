package job

import (
	"context"
	"errors"
	"strconv"

	"repairx/bizerror"
	"repairx/domain"
	"repairx/domain/state"
	"repairx/event"
	"repairx/idgen"
	"repairx/persistence"
	"repairx/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	jobIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateJobFunc        = CreateJob
	DetailJobFunc        = DetailJob
	QueryJobsFunc        = QueryJobs
	AssignTechnicianFunc = AssignTechnician
	ArchiveJobsFunc      = ArchiveJobs
	LoadJobsFunc         = LoadJobs
)

// CreateJob is the booking intake: every job begins in CREATED with version 0
// and an empty history.
func CreateJob(c *domain.JobCreation, sec *session.Context) (*domain.JobDetail, error) {
	if !sec.HasRoleSuffix("_"+c.OrganizationID.String()) && !sec.HasRole(string(state.RoleSaasAdmin)) {
		return nil, bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	var jobDetail *domain.JobDetail
	var ev *event.EventRecord

	err1 := db.Transaction(func(tx *gorm.DB) error {
		now := types.CurrentTimestamp()
		jobDetail = &domain.JobDetail{
			Job: domain.Job{
				ID:         idgen.NextID(jobIdWorker),
				Title:      c.Title,
				DeviceDesc: c.DeviceDesc,

				OrganizationID: c.OrganizationID,
				CustomerID:     c.CustomerID,

				StateName:      state.StateCreated.Name,
				StateCategory:  state.StateCreated.Category,
				StateBeginTime: now,
				State:          state.StateCreated,

				CreateTime: now,
			},
		}

		identifier, err := NextJobIdentifierFunc(c.OrganizationID, tx)
		if err != nil {
			return err
		}
		jobDetail.Identifier = identifier

		if err := tx.Create(&jobDetail.Job).Error; err != nil {
			return err
		}

		ev, err = CreateJobCreatedEvent(&jobDetail.Job, &sec.Identity, now, tx)
		if err != nil {
			return err
		}
		return nil
	})
	if err1 != nil {
		return nil, err1
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}

	return jobDetail, nil
}

func DetailJob(identifier string, sec *session.Context) (*domain.JobDetail, error) {
	id, _ := types.ParseID(identifier)
	jobDetail := domain.JobDetail{}
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	if err := db.Where("id = ? OR identifier LIKE ?", id, identifier).First(&(jobDetail.Job)).Error; err != nil {
		return nil, err
	}

	if !sec.HasOrgViewPerm(jobDetail.OrganizationID) {
		return nil, bizerror.ErrForbidden
	}

	stateFound, found := state.RepairMachine.FindState(jobDetail.StateName)
	if !found {
		return nil, bizerror.ErrUnknownState
	}
	jobDetail.State = stateFound

	checklist, err := LoadChecklistStatusesFunc(jobDetail.ID, db)
	if err != nil {
		return nil, err
	}
	jobDetail.Checklist = checklist

	return &jobDetail, nil
}

func QueryJobs(query *domain.JobQuery, sec *session.Context) (*[]domain.Job, error) {
	var jobs []domain.Job
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())

	q := db.Where(domain.Job{OrganizationID: query.OrganizationID})
	if query.Title != "" {
		q = q.Where("title like ?", "%"+query.Title+"%")
	}
	if len(query.StateCategories) > 0 {
		q = q.Where("state_category in (?)", query.StateCategories)
	}

	if query.ArchiveState == domain.StatusOn {
		q = q.Where("archive_time != ?", types.Timestamp{})
	} else if query.ArchiveState == domain.StatusAll {
		// archive_time not in where clause
	} else {
		q = q.Where("archive_time = ?", types.Timestamp{})
	}

	if !sec.Perms.HasGlobalViewRole() {
		visibleOrgs := sec.VisibleOrganizations()
		if len(visibleOrgs) == 0 {
			return &[]domain.Job{}, nil
		}
		q = q.Where("organization_id in (?)", visibleOrgs)
	}
	if err := q.Order("create_time ASC").Find(&jobs).Error; err != nil {
		return nil, err
	}

	if err := ExtendJobs(jobs); err != nil {
		return nil, err
	}

	return &jobs, nil
}

// ExtendJobs append Job.State
func ExtendJobs(jobs []domain.Job) error {
	for i := range jobs {
		stateFound, found := state.RepairMachine.FindState(jobs[i].StateName)
		if !found {
			return bizerror.ErrUnknownState
		}
		jobs[i].State = stateFound
	}
	return nil
}

func findJobAndCheckPerms(db *gorm.DB, id types.ID, sec *session.Context) (*domain.Job, error) {
	var j domain.Job
	if err := db.Where(&domain.Job{ID: id}).First(&j).Error; err != nil {
		return nil, err
	}
	if sec == nil {
		return nil, bizerror.ErrForbidden
	}
	if !sec.HasRoleSuffix("_"+j.OrganizationID.String()) && !sec.HasRole(string(state.RoleSaasAdmin)) {
		return nil, bizerror.ErrForbidden
	}
	return &j, nil
}

// AssignTechnician sets or replaces the technician of a live job.
func AssignTechnician(id types.ID, assignment *domain.TechnicianAssignment, sec *session.Context) (*domain.Job, error) {
	var updatedJob domain.Job
	var ev *event.EventRecord
	err1 := persistence.ActiveDataSourceManager.GormDB(context.Background()).Transaction(func(tx *gorm.DB) error {
		originJob, err := findJobAndCheckPerms(tx, id, sec)
		if err != nil {
			return err
		}
		role, found := sec.OrgRole(originJob.OrganizationID)
		if !found || (role != state.RoleOrgManager && role != state.RoleOrgOwner && role != state.RoleSaasAdmin) {
			return bizerror.ErrForbidden
		}

		stateFound, found := state.RepairMachine.FindState(originJob.StateName)
		if !found {
			return bizerror.ErrUnknownState
		}
		if stateFound.IsTerminal() {
			return bizerror.ErrTerminalState
		}

		db := tx.Model(&domain.Job{}).Where(&domain.Job{ID: id}).
			Update(&domain.Job{TechnicianID: assignment.TechnicianID})
		if err := db.Error; err != nil {
			return err
		}
		if db.RowsAffected != 1 {
			return errors.New("expected affected row is 1, but actual is " + strconv.FormatInt(db.RowsAffected, 10))
		}

		ev, err = CreateJobPropertyUpdatedEvent(originJob,
			[]event.UpdatedProperty{{
				PropertyName: "TechnicianID", PropertyDesc: "TechnicianID",
				OldValue: originJob.TechnicianID.String(), OldValueDesc: originJob.TechnicianID.String(),
				NewValue: assignment.TechnicianID.String(), NewValueDesc: assignment.TechnicianID.String(),
			}},
			&sec.Identity, types.CurrentTimestamp(), tx)
		if err != nil {
			return err
		}

		if err := tx.Where(&domain.Job{ID: id}).First(&updatedJob).Error; err != nil {
			return err
		}
		updatedJob.State = stateFound
		return nil
	})
	if err1 != nil {
		return nil, err1
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}

	return &updatedJob, nil
}

// ArchiveJobs soft-archives jobs which already reached a terminal state.
func ArchiveJobs(ids []types.ID, sec *session.Context) error {
	var events []*event.EventRecord
	now := types.CurrentTimestamp()
	err1 := persistence.ActiveDataSourceManager.GormDB(context.Background()).Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			j, err := findJobAndCheckPerms(tx, id, sec)
			if err != nil {
				return err
			}
			if j.StateCategory != state.Done && j.StateCategory != state.Rejected {
				return bizerror.ErrArchiveStatusInvalid
			}
			if !j.ArchiveTime.IsZero() {
				continue
			}

			ev, err := CreateJobPropertyUpdatedEvent(j,
				[]event.UpdatedProperty{{
					PropertyName: "ArchiveTime", PropertyDesc: "ArchiveTime",
					OldValue: j.ArchiveTime.String(), OldValueDesc: j.ArchiveTime.String(),
					NewValue: now.String(), NewValueDesc: now.String(),
				}},
				&sec.Identity, now, tx)
			if err != nil {
				return err
			}
			events = append(events, ev)

			db := tx.Model(&domain.Job{ID: id}).Updates(&domain.Job{ArchiveTime: now})
			if err := db.Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err1 != nil {
		return err1
	}

	if event.InvokeHandlersFunc != nil {
		for _, ev := range events {
			event.InvokeHandlersFunc(ev)
		}
	}

	return nil
}

func LoadJobs(page, size int) ([]domain.Job, error) {
	jobs := []domain.Job{}
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	offset := (page - 1) * size
	if offset < 0 {
		offset = 0
	}
	if err := db.Order("ID ASC").Offset(offset).Limit(size).Find(&jobs).Error; err != nil {
		return nil, err
	}
	if err := ExtendJobs(jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}
