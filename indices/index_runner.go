package indices

import (
	cron "github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartCron runs a nightly full sync to repair whatever incremental indexing
// missed.
func StartCron() *cron.Cron {
	crontab := cron.New(cron.WithSeconds())
	crontab.AddFunc("0 0 23 * * ?", func() {
		if err := IndicesFullSyncFunc(); err != nil {
			logrus.Warnf("nightly indices full sync failed: %v", err)
		}
	})
	crontab.Start()
	return crontab
}
