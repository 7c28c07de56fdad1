package indices

import (
	"fmt"
	"sync"

	"repairx/authority"
	"repairx/bizerror"
	"repairx/domain"
	"repairx/domain/job"
	"repairx/domain/state"
	"repairx/session"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	indexRobot = &session.Context{
		Identity: session.Identity{ID: 10, Name: "index-robot"},
		Perms:    authority.Permissions{string(state.RoleSaasAdmin)},
	}

	lock    sync.Mutex
	running bool

	IndicesFullSyncFunc    = IndicesFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun
	LoadJobForIndexFunc    = loadJobForIndex
)

func loadJobForIndex(id types.ID) (*domain.Job, error) {
	detail, err := job.DetailJobFunc(id.String(), indexRobot)
	if err != nil {
		return nil, err
	}
	return &detail.Job, nil
}

func ScheduleNewSyncRun(sec *session.Context) (bool, error) {
	if !sec.Perms.HasRole(string(state.RoleSaasAdmin)) {
		return false, bizerror.ErrForbidden
	}

	lock.Lock()
	if running {
		lock.Unlock()
		return false, nil
	}
	running = true
	lock.Unlock()

	waitRunning := sync.WaitGroup{}
	waitRunning.Add(1)
	go func() {
		waitRunning.Done()
		defer func() {
			lock.Lock()
			running = false
			lock.Unlock()
		}()
		IndicesFullSyncFunc()
	}()
	waitRunning.Wait()
	return true, nil
}

var (
	SyncBatchSize = 500
)

func IndicesFullSync() (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			e, ok := ret.(error)
			if ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()

	page := 1
	for {
		jobs, err := job.LoadJobsFunc(page, SyncBatchSize)
		if err != nil {
			logrus.Warnf("indices fully sync: error on retrieve jobs(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
			page++
			continue
		}

		if len(jobs) == 0 {
			logrus.Infof("indices fully sync: there are no more jobs to index")
			return nil // loop exit
		}

		if err := IndexJobs(jobs); err != nil {
			logrus.Warnf("indices fully sync: error on index jobs(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
		}
		page++
	}
}
