package servehttp

import (
	"net/http"

	"repairx/bizerror"
	"repairx/indices"
	"repairx/indices/search"
	"repairx/misc"
	"repairx/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterIndicesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/index-syncs", middleWares...)
	g.POST("", handleCreateIndexSync)

	s := r.Group("/v1/job-search", middleWares...)
	s.GET("", handleSearchJobs)
}

func handleCreateIndexSync(c *gin.Context) {
	accepted, err := indices.ScheduleNewSyncRunFunc(session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	if !accepted {
		c.AbortWithStatus(http.StatusConflict)
		return
	}
	c.AbortWithStatus(http.StatusAccepted)
}

func handleSearchJobs(c *gin.Context) {
	query := search.JobSearchQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	jobs, err := search.SearchJobsFunc(query, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: jobs, Total: uint64(len(jobs))})
}
