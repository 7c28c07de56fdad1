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

func RegisterJobTransitionsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/jobs/:id", middleWares...)
	g.POST("transitions", handleCreateTransition)
	g.GET("transitions", handleQueryTransitions)
	g.GET("available-transitions", handleAvailableTransitions)
}

func parseJobId(c *gin.Context) types.ID {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return parsedId
}

func handleCreateTransition(c *gin.Context) {
	request := domain.TransitionRequest{}
	err := c.ShouldBindBodyWith(&request, binding.JSON)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	request.JobID = parseJobId(c)

	result, err := job.TransitionJobFunc(&request, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	if result.Replayed {
		c.JSON(http.StatusOK, result)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func handleQueryTransitions(c *gin.Context) {
	transitions, err := job.QueryTransitionsFunc(parseJobId(c), session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: transitions, Total: uint64(len(*transitions))})
}

func handleAvailableTransitions(c *gin.Context) {
	transitions, err := job.AvailableTransitionsFunc(parseJobId(c), session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, transitions)
}
