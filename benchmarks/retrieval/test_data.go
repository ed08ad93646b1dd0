// ABOUTME: Ground-truth data structures for retrieval evaluation
// ABOUTME: Loads the evaluation manifest of labelled test queries

package retrieval

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// QueryID identifies a test query. Manifests use both numbers and strings.
type QueryID string

// UnmarshalJSON accepts a JSON number or string
func (q *QueryID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = QueryID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("query_id must be a number or string: %w", err)
	}
	*q = QueryID(n.String())
	return nil
}

// TestQuery is one labelled question
type TestQuery struct {
	QueryID             QueryID  `json:"query_id"`
	Query               string   `json:"query"`
	GroundTruthImageIDs []string `json:"ground_truth_image_ids"`
}

// GroundTruth is the evaluation manifest
type GroundTruth struct {
	TestQueries []TestQuery `json:"test_queries"`
}

// LoadGroundTruth reads an evaluation manifest from path
func LoadGroundTruth(path string) (*GroundTruth, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ground truth: %w", err)
	}

	var gt GroundTruth
	if err := json.Unmarshal(data, &gt); err != nil {
		return nil, fmt.Errorf("parsing ground truth %s: %w", path, err)
	}
	return &gt, nil
}

// QueryResult holds the metrics for one test query
type QueryResult struct {
	QueryID      QueryID         `json:"query_id"`
	Query        string          `json:"query"`
	NumRelevant  int             `json:"num_relevant"`
	NumRetrieved int             `json:"num_retrieved"`
	Precision    map[int]float64 `json:"precision_at_k"`
	Recall       map[int]float64 `json:"recall_at_k"`
	MRR          float64         `json:"mrr"`
}

// Summary describes the evaluated dataset
type Summary struct {
	TotalQueries             int     `json:"total_queries"`
	QueriesEvaluated         int     `json:"queries_evaluated"`
	AverageRelevantPerQuery  float64 `json:"average_relevant_per_query"`
	AverageRetrievedPerQuery float64 `json:"average_retrieved_per_query"`
}

// Report is the outcome of an evaluation run
type Report struct {
	AvgPrecision map[int]float64 `json:"avg_precision_at_k"`
	AvgRecall    map[int]float64 `json:"avg_recall_at_k"`
	AvgMRR       float64         `json:"avg_mrr"`
	PerQuery     []QueryResult   `json:"per_query_results"`
	Summary      Summary         `json:"evaluation_summary"`
}
