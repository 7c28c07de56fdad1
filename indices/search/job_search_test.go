package search_test

import (
	"encoding/json"
	"errors"
	"testing"

	"repairx/domain"
	"repairx/es"
	"repairx/indices/search"
	"repairx/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func TestSearchJobs(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should scope the query to the visible organizations", func(t *testing.T) {
		defer func() { es.SearchFunc = es.Search }()

		var receivedIndex string
		var receivedQuery interface{}
		es.SearchFunc = func(index string, query interface{}) ([]es.SearchHit, error) {
			receivedIndex = index
			receivedQuery = query
			return []es.SearchHit{
				{Id: "100", Source: json.RawMessage(`{"id":"100","identifier":"RX1-1","title":"broken screen"}`)},
			}, nil
		}

		jobs, err := search.SearchJobs(search.JobSearchQuery{Keyword: "screen"},
			testinfra.BuildSecCtx(30, "ORG_MANAGER_1"))
		Expect(err).To(BeNil())
		Expect(receivedIndex).To(Equal("jobs"))
		Expect(receivedQuery).To(Equal(map[string]interface{}{
			"query": map[string]interface{}{
				"bool": map[string]interface{}{
					"must": []interface{}{
						map[string]interface{}{
							"multi_match": map[string]interface{}{
								"query":  "screen",
								"fields": []string{"title", "deviceDesc", "identifier"},
							},
						},
						map[string]interface{}{
							"terms": map[string]interface{}{"organizationId": []string{"1"}},
						},
					},
				},
			},
		}))

		Expect(len(jobs)).To(Equal(1))
		Expect(jobs[0].ID).To(Equal(types.ID(100)))
		Expect(jobs[0].Identifier).To(Equal("RX1-1"))
		Expect(jobs[0].Title).To(Equal("broken screen"))
	})

	t.Run("should not constrain a global viewer", func(t *testing.T) {
		defer func() { es.SearchFunc = es.Search }()

		var receivedQuery interface{}
		es.SearchFunc = func(index string, query interface{}) ([]es.SearchHit, error) {
			receivedQuery = query
			return nil, nil
		}

		_, err := search.SearchJobs(search.JobSearchQuery{}, testinfra.BuildSecCtx(1, "SAAS_ADMIN"))
		Expect(err).To(BeNil())
		Expect(receivedQuery).To(Equal(map[string]interface{}{
			"query": map[string]interface{}{
				"bool": map[string]interface{}{"must": []interface{}{}},
			},
		}))
	})

	t.Run("should answer empty without searching when nothing is visible", func(t *testing.T) {
		defer func() { es.SearchFunc = es.Search }()

		es.SearchFunc = func(index string, query interface{}) ([]es.SearchHit, error) {
			t.Fatal("search must not be invoked")
			return nil, nil
		}

		jobs, err := search.SearchJobs(search.JobSearchQuery{Keyword: "screen"}, testinfra.BuildSecCtx(30))
		Expect(err).To(BeNil())
		Expect(jobs).To(Equal([]domain.Job{}))
	})

	t.Run("should be able to handle error", func(t *testing.T) {
		defer func() { es.SearchFunc = es.Search }()

		es.SearchFunc = func(index string, query interface{}) ([]es.SearchHit, error) {
			return nil, errors.New("a mocked error")
		}
		jobs, err := search.SearchJobs(search.JobSearchQuery{}, testinfra.BuildSecCtx(30, "ORG_MANAGER_1"))
		Expect(jobs).To(BeNil())
		Expect(err).To(Equal(errors.New("a mocked error")))

		es.SearchFunc = func(index string, query interface{}) ([]es.SearchHit, error) {
			return []es.SearchHit{{Id: "100", Source: json.RawMessage(`not json`)}}, nil
		}
		jobs, err = search.SearchJobs(search.JobSearchQuery{}, testinfra.BuildSecCtx(30, "ORG_MANAGER_1"))
		Expect(jobs).To(BeNil())
		Expect(err).ToNot(BeNil())
	})
}
