package servehttp

import (
	"errors"
	"net/http"

	"repairx/bizerror"
	"repairx/domain"
	"repairx/domain/job"
	"repairx/misc"
	"repairx/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterJobsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/jobs", middleWares...)
	g.GET("", handleQueryJobs)
	g.POST("", handleCreateJob)
	g.GET(":id", handleDetailJob)
	g.PUT(":id/technician", handleAssignTechnician)

	a := r.Group("/v1/archived-jobs", middleWares...)
	a.POST("", handleCreateArchivedJobs)
}

func handleQueryJobs(c *gin.Context) {
	query := domain.JobQuery{}
	err := c.MustBindWith(&query, binding.Query)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	jobs, err := job.QueryJobsFunc(&query, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: jobs, Total: uint64(len(*jobs))})
}

func handleCreateJob(c *gin.Context) {
	creation := domain.JobCreation{}
	err := c.ShouldBindBodyWith(&creation, binding.JSON)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	detail, err := job.CreateJobFunc(&creation, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, detail)
}

func handleDetailJob(c *gin.Context) {
	detail, err := job.DetailJobFunc(c.Param("id"), session.FindSecurityContext(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func handleAssignTechnician(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	assignment := domain.TechnicianAssignment{}
	err = c.ShouldBindBodyWith(&assignment, binding.JSON)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	updatedJob, err := job.AssignTechnicianFunc(parsedId, &assignment, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, updatedJob)
}

type JobSelection struct {
	JobIdList []types.ID `json:"jobIdList" binding:"required"`
}

func handleCreateArchivedJobs(c *gin.Context) {
	selection := JobSelection{}
	if err := c.ShouldBindBodyWith(&selection, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	err := job.ArchiveJobsFunc(selection.JobIdList, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}
