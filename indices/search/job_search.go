package search

import (
	"encoding/json"

	"repairx/domain"
	"repairx/es"
	"repairx/indices"
	"repairx/session"
)

type JobSearchQuery struct {
	Keyword string `json:"q" form:"q"`
}

var SearchJobsFunc = SearchJobs

// SearchJobs queries the job index, constrained to the organizations the
// session may see.
func SearchJobs(query JobSearchQuery, sec *session.Context) ([]domain.Job, error) {
	must := []interface{}{}
	if query.Keyword != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query.Keyword,
				"fields": []string{"title", "deviceDesc", "identifier"},
			},
		})
	}

	if !sec.Perms.HasGlobalViewRole() {
		visibleOrgs := sec.VisibleOrganizations()
		if len(visibleOrgs) == 0 {
			return []domain.Job{}, nil
		}
		orgIds := make([]string, 0, len(visibleOrgs))
		for _, id := range visibleOrgs {
			orgIds = append(orgIds, id.String())
		}
		must = append(must, map[string]interface{}{
			"terms": map[string]interface{}{"organizationId": orgIds},
		})
	}

	esQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"must": must},
		},
	}

	hits, err := es.SearchFunc(indices.JobIndexName, esQuery)
	if err != nil {
		return nil, err
	}

	jobs := make([]domain.Job, 0, len(hits))
	for _, hit := range hits {
		doc := indices.JobDocument{}
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			return nil, err
		}
		jobs = append(jobs, doc.Job)
	}
	return jobs, nil
}
