package servehttp_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"repairx/bizerror"
	"repairx/domain"
	"repairx/indices"
	"repairx/indices/search"
	"repairx/servehttp"
	"repairx/session"
	"repairx/testinfra"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestCreateIndexSyncRestAPI(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	servehttp.RegisterIndicesRestAPI(router)

	t.Run("should answer 202 when a sync run is scheduled", func(t *testing.T) {
		indices.ScheduleNewSyncRunFunc = func(sec *session.Context) (bool, error) {
			return true, nil
		}
		req := httptest.NewRequest(http.MethodPost, "/v1/index-syncs", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusAccepted))
		Expect(body).To(BeEmpty())
	})

	t.Run("should answer 409 when a sync run is already running", func(t *testing.T) {
		indices.ScheduleNewSyncRunFunc = func(sec *session.Context) (bool, error) {
			return false, nil
		}
		req := httptest.NewRequest(http.MethodPost, "/v1/index-syncs", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusConflict))
		Expect(body).To(BeEmpty())
	})

	t.Run("should be able to handle error", func(t *testing.T) {
		indices.ScheduleNewSyncRunFunc = func(sec *session.Context) (bool, error) {
			return false, bizerror.ErrForbidden
		}
		req := httptest.NewRequest(http.MethodPost, "/v1/index-syncs", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusForbidden))
		Expect(body).To(MatchJSON(`{"code":"security.forbidden","message":"access forbidden","data":null}`))
	})
}

func TestSearchJobsRestAPI(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	servehttp.RegisterIndicesRestAPI(router)

	t.Run("should pass the keyword through and page the result", func(t *testing.T) {
		search.SearchJobsFunc = func(query search.JobSearchQuery, sec *session.Context) ([]domain.Job, error) {
			Expect(query).To(Equal(search.JobSearchQuery{Keyword: "screen"}))
			return []domain.Job{}, nil
		}
		req := httptest.NewRequest(http.MethodGet, "/v1/job-search?q=screen", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"data":[],"total":0}`))
	})

	t.Run("should be able to handle error", func(t *testing.T) {
		search.SearchJobsFunc = func(query search.JobSearchQuery, sec *session.Context) ([]domain.Job, error) {
			return nil, errors.New("a mocked error")
		}
		req := httptest.NewRequest(http.MethodGet, "/v1/job-search", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(body).To(MatchJSON(`{"code":"common.internal_server_error","message":"a mocked error","data":null}`))
	})
}
