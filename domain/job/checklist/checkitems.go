package checklist

import (
	"context"

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
	checkitemIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateCheckItemFunc = CreateCheckItem
	ListCheckItemsFunc  = ListCheckItems
	ReviewCheckItemFunc = ReviewCheckItem
	DeleteCheckItemFunc = DeleteCheckItem

	LoadChecklistStatusesFunc = LoadChecklistStatuses
)

type CheckItemState string

const (
	CheckItemStatePending = CheckItemState("PENDING")
	CheckItemStatePassed  = CheckItemState("PASSED")
	CheckItemStateFailed  = CheckItemState("FAILED")
)

// CheckItem is one quality gate checkpoint of a job. the
// QUALITY_CHECK -> COMPLETED edge requires a non empty checklist with every
// item passed.
type CheckItem struct {
	ID    types.ID `json:"id" gorm:"primary_key"`
	Name  string   `json:"name"`
	JobId types.ID `json:"jobId" gorm:"index:for_job"`

	State CheckItemState `json:"state"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (i *CheckItem) TableName() string {
	return "check_items"
}

type CheckItemCreation struct {
	Name  string   `json:"name" binding:"required"`
	JobId types.ID `json:"jobId" binding:"required"`
}

type CheckItemReview struct {
	State CheckItemState `json:"state" binding:"required,oneof=PENDING PASSED FAILED"`
}

func CreateCheckItem(req CheckItemCreation, sec *session.Context) (*CheckItem, error) {
	var r *CheckItem
	var ev *event.EventRecord
	txErr := persistence.ActiveDataSourceManager.GormDB(context.Background()).Transaction(func(tx *gorm.DB) error {
		j, err := findJobAndCheckPerms(tx, req.JobId, sec)
		if err != nil {
			return err
		}
		stateFound, found := state.RepairMachine.FindState(j.StateName)
		if !found {
			return bizerror.ErrUnknownState
		}
		if stateFound.IsTerminal() {
			return bizerror.ErrTerminalState
		}

		i := CheckItem{
			ID:         idgen.NextID(checkitemIdWorker),
			Name:       req.Name,
			JobId:      j.ID,
			CreateTime: types.CurrentTimestamp(),
			State:      CheckItemStatePending,
		}
		if err := tx.Save(&i).Error; err != nil {
			return err
		}
		r = &i

		ev, err = event.CreateEvent("JOB", j.ID, j.Identifier, event.EventCategoryExtensionUpdated,
			[]event.UpdatedProperty{{
				PropertyName: "Checklist", PropertyDesc: "Checklist",
				NewValue: req.Name, NewValueDesc: req.Name,
			}}, &sec.Identity, i.CreateTime, tx)
		if err != nil {
			return err
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return r, nil
}

func ListCheckItems(jobId types.ID, sec *session.Context) ([]CheckItem, error) {
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	if _, err := findJobAndCheckPerms(db, jobId, sec); err != nil {
		return nil, err
	}

	items := []CheckItem{}
	if err := db.Where(&CheckItem{JobId: jobId}).Order("create_time ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ReviewCheckItem records the pass/fail outcome of one checkpoint.
func ReviewCheckItem(id types.ID, review CheckItemReview, sec *session.Context) (*CheckItem, error) {
	var r *CheckItem
	txErr := persistence.ActiveDataSourceManager.GormDB(context.Background()).Transaction(func(tx *gorm.DB) error {
		item := CheckItem{}
		if err := tx.Where(&CheckItem{ID: id}).First(&item).Error; err != nil {
			return err
		}
		if _, err := findJobAndCheckPerms(tx, item.JobId, sec); err != nil {
			return err
		}

		if err := tx.Model(&CheckItem{}).Where("id = ?", id).Update("state", review.State).Error; err != nil {
			return err
		}
		item.State = review.State
		r = &item
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return r, nil
}

func DeleteCheckItem(id types.ID, sec *session.Context) error {
	return persistence.ActiveDataSourceManager.GormDB(context.Background()).Transaction(func(tx *gorm.DB) error {
		item := CheckItem{}
		if err := tx.Where(&CheckItem{ID: id}).First(&item).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return nil
			}
			return err
		}
		if _, err := findJobAndCheckPerms(tx, item.JobId, sec); err != nil {
			return err
		}
		return tx.Delete(CheckItem{}, "id = ?", id).Error
	})
}

// LoadChecklistStatuses projects a job's checklist into the snapshot the
// transition validator consumes.
func LoadChecklistStatuses(jobId types.ID, db *gorm.DB) ([]domain.ChecklistItemStatus, error) {
	items := []CheckItem{}
	if err := db.Where(&CheckItem{JobId: jobId}).Order("create_time ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	statuses := make([]domain.ChecklistItemStatus, 0, len(items))
	for _, item := range items {
		statuses = append(statuses, domain.ChecklistItemStatus{Name: item.Name, Passed: item.State == CheckItemStatePassed})
	}
	return statuses, nil
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
