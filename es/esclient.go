package es

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/fundwit/go-commons/types"
)

// ELASTICSEARCH_URL
var ActiveESClient *elasticsearch.Client

var (
	IndexFunc              = Index
	DeleteDocumentByIdFunc = DeleteDocumentById
	SearchFunc             = Search
)

func BootstrapESClientFromEnv() error {
	client, err := elasticsearch.NewDefaultClient()
	if err != nil {
		return err
	}
	ActiveESClient = client
	return nil
}

func Index(index string, id types.ID, doc interface{}) error {
	if ActiveESClient == nil {
		return errors.New("elasticsearch client is not bootstrapped")
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      index,
		DocumentID: id.String(),
		Body:       bytes.NewReader(buf.Bytes()),
		Refresh:    "true",
	}

	res, err := req.Do(context.Background(), ActiveESClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index document %s into %s: %s", id, index, res.Status())
	}
	return nil
}

func DeleteDocumentById(index string, id types.ID) error {
	if ActiveESClient == nil {
		return errors.New("elasticsearch client is not bootstrapped")
	}

	req := esapi.DeleteRequest{
		Index:      index,
		DocumentID: id.String(),
		Refresh:    "true",
	}
	res, err := req.Do(context.Background(), ActiveESClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete document %s from %s: %s", id, index, res.Status())
	}
	return nil
}

type SearchHit struct {
	Id     string          `json:"_id"`
	Source json.RawMessage `json:"_source"`
}

// Search runs the query body against the index and returns raw hit sources.
func Search(index string, query interface{}) ([]SearchHit, error) {
	if ActiveESClient == nil {
		return nil, errors.New("elasticsearch client is not bootstrapped")
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, err
	}

	res, err := ActiveESClient.Search(
		ActiveESClient.Search.WithContext(context.Background()),
		ActiveESClient.Search.WithIndex(index),
		ActiveESClient.Search.WithBody(&buf),
		ActiveESClient.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		respBody, _ := ioutil.ReadAll(res.Body)
		return nil, fmt.Errorf("search %s: %s %s", index, res.Status(), string(respBody))
	}

	result := struct {
		Hits struct {
			Hits []SearchHit `json:"hits"`
		} `json:"hits"`
	}{}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, err
	}
	return result.Hits.Hits, nil
}
