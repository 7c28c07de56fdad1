package job

import (
	"repairx/domain/job/checklist"
)

// the quality gate reads the checklist through this seam so tests can plan
// transitions without checklist rows
var LoadChecklistStatusesFunc = checklist.LoadChecklistStatuses
