package servehttp

import (
	"errors"
	"net/http"

	"repairx/bizerror"
	"repairx/domain/job/checklist"
	"repairx/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterCheckItemsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/check-items", middleWares...)
	g.POST("", handleCreateCheckItem)
	g.PUT(":id/review", handleReviewCheckItem)
	g.DELETE(":id", handleDeleteCheckItem)

	j := r.Group("/v1/jobs/:id/check-items", middleWares...)
	j.GET("", handleListCheckItems)
}

func handleCreateCheckItem(c *gin.Context) {
	creation := checklist.CheckItemCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	item, err := checklist.CreateCheckItemFunc(creation, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, item)
}

func handleListCheckItems(c *gin.Context) {
	items, err := checklist.ListCheckItemsFunc(parseJobId(c), session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, items)
}

func handleReviewCheckItem(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	review := checklist.CheckItemReview{}
	if err := c.ShouldBindBodyWith(&review, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	item, err := checklist.ReviewCheckItemFunc(parsedId, review, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, item)
}

func handleDeleteCheckItem(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	if err := checklist.DeleteCheckItemFunc(parsedId, session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}
