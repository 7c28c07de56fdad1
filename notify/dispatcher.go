package notify

import (
	"context"
	"sync"
	"time"

	"github.com/fundwit/go-commons/types"
	cron "github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	DispatchFunc = Dispatch

	// gateway calls are throttled so a burst of transitions cannot flood the
	// external collaborator
	gatewayLimiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 10)

	MaxDeliveryAttempts = 6
	baseBackoff         = 2 * time.Second

	sweepLock    sync.Mutex
	sweepRunning bool

	SweepBatchSize = 100
)

// Dispatch delivers the queued records of one committed transition. it runs
// after commit, off the caller's critical path; a failed delivery only delays
// the record, it never surfaces to the transition caller.
func Dispatch(records []Record) {
	go func() {
		for _, record := range records {
			deliver(record)
		}
	}()
}

func deliver(record Record) {
	if err := gatewayLimiter.Wait(context.Background()); err != nil {
		logrus.Warnf("notification %d: limiter interrupted: %v", record.ID, err)
		return
	}

	intent := Intent{JobID: record.JobID, JobIdentifier: record.JobIdentifier,
		Recipient: record.Recipient, Template: record.Template, Variables: record.Variables}
	err := ActiveGateway.Send(intent)
	attempts := record.Attempts + 1
	if err == nil {
		if err := FinishRecordFunc(record.ID); err != nil {
			logrus.Warnf("notification %d: failed to mark delivered: %v", record.ID, err)
		}
		return
	}

	logrus.Warnf("notification %d: delivery attempt %d failed: %v", record.ID, attempts, err)
	if attempts >= MaxDeliveryAttempts {
		if err := AbandonRecordFunc(record.ID, attempts); err != nil {
			logrus.Warnf("notification %d: failed to abandon: %v", record.ID, err)
		}
		return
	}
	if err := DelayRecordFunc(record.ID, attempts, baseBackoff<<uint(attempts-1)); err != nil {
		logrus.Warnf("notification %d: failed to delay: %v", record.ID, err)
	}
}

// StartRedeliveryCron sweeps due undelivered records, picking up everything a
// crashed or slow process left behind.
func StartRedeliveryCron() *cron.Cron {
	crontab := cron.New(cron.WithSeconds())
	crontab.AddFunc("0 * * * * ?", func() {
		if _, err := SweepDueRecords(); err != nil {
			logrus.Warnf("notification redelivery sweep failed: %v", err)
		}
	})
	crontab.Start()
	return crontab
}

// SweepDueRecords redelivers every record whose next attempt is due. only one
// sweep runs at a time. delivery removes records from the due set (delivered,
// delayed into the future, or abandoned), so the sweep re-queries the first
// page until it drains instead of paging past the shrinking set.
func SweepDueRecords() (int, error) {
	sweepLock.Lock()
	if sweepRunning {
		sweepLock.Unlock()
		return 0, nil
	}
	sweepRunning = true
	sweepLock.Unlock()
	defer func() {
		sweepLock.Lock()
		sweepRunning = false
		sweepLock.Unlock()
	}()

	total := 0
	var stalled types.ID
	for {
		records, err := LoadDueRecordsFunc(1, SweepBatchSize)
		if err != nil {
			return total, err
		}
		if len(records) == 0 {
			return total, nil
		}
		// a record still due after delivery had its status update fail; leave
		// it to the next sweep rather than spinning on it
		if records[0].ID == stalled {
			logrus.Warnf("notification redelivery sweep: record %d is not progressing, stopping", stalled)
			return total, nil
		}
		stalled = records[0].ID

		for _, record := range records {
			deliver(record)
			total++
		}
	}
}
