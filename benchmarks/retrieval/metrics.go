// ABOUTME: Retrieval metrics: precision@k, recall@k and reciprocal rank
// ABOUTME: Aggregates per-query scores into a report and prints it

package retrieval

import (
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"
)

// KValues are the cutoffs every query is scored at
var KValues = []int{1, 3, 5, 10}

// PrecisionAtK is the share of the first k retrieved ids that are relevant
func PrecisionAtK(retrieved []string, relevant map[string]bool, k int) float64 {
	if k == 0 || len(retrieved) == 0 {
		return 0
	}
	top := retrieved[:min(k, len(retrieved))]
	return float64(countRelevant(top, relevant)) / float64(len(top))
}

// RecallAtK is the share of relevant ids found in the first k retrieved
func RecallAtK(retrieved []string, relevant map[string]bool, k int) float64 {
	if len(relevant) == 0 {
		return 0
	}
	top := retrieved[:min(k, len(retrieved))]
	return float64(countRelevant(top, relevant)) / float64(len(relevant))
}

// ReciprocalRank is 1/rank of the first relevant id, or 0
func ReciprocalRank(retrieved []string, relevant map[string]bool) float64 {
	for i, id := range retrieved {
		if relevant[id] {
			return 1 / float64(i+1)
		}
	}
	return 0
}

func countRelevant(ids []string, relevant map[string]bool) int {
	n := 0
	for _, id := range ids {
		if relevant[id] {
			n++
		}
	}
	return n
}

// Evaluate scores retrieved ids against the ground truth. Queries missing
// from retrieved are scored as if nothing was returned.
func Evaluate(gt *GroundTruth, retrieved map[QueryID][]string) Report {
	report := Report{
		AvgPrecision: make(map[int]float64, len(KValues)),
		AvgRecall:    make(map[int]float64, len(KValues)),
		PerQuery:     make([]QueryResult, 0, len(gt.TestQueries)),
	}

	var relevantTotal, retrievedTotal int
	for _, q := range gt.TestQueries {
		relevant := make(map[string]bool, len(q.GroundTruthImageIDs))
		for _, id := range q.GroundTruthImageIDs {
			relevant[id] = true
		}
		ids := retrieved[q.QueryID]

		result := QueryResult{
			QueryID:      q.QueryID,
			Query:        q.Query,
			NumRelevant:  len(relevant),
			NumRetrieved: len(ids),
			Precision:    make(map[int]float64, len(KValues)),
			Recall:       make(map[int]float64, len(KValues)),
			MRR:          ReciprocalRank(ids, relevant),
		}
		for _, k := range KValues {
			result.Precision[k] = PrecisionAtK(ids, relevant, k)
			result.Recall[k] = RecallAtK(ids, relevant, k)
			report.AvgPrecision[k] += result.Precision[k]
			report.AvgRecall[k] += result.Recall[k]
		}
		report.AvgMRR += result.MRR

		relevantTotal += result.NumRelevant
		if result.NumRetrieved > 0 {
			report.Summary.QueriesEvaluated++
			retrievedTotal += result.NumRetrieved
		}
		report.PerQuery = append(report.PerQuery, result)
	}

	n := len(gt.TestQueries)
	report.Summary.TotalQueries = n
	if n > 0 {
		for _, k := range KValues {
			report.AvgPrecision[k] /= float64(n)
			report.AvgRecall[k] /= float64(n)
		}
		report.AvgMRR /= float64(n)
		report.Summary.AverageRelevantPerQuery = float64(relevantTotal) / float64(n)
	}
	if report.Summary.QueriesEvaluated > 0 {
		report.Summary.AverageRetrievedPerQuery = float64(retrievedTotal) / float64(report.Summary.QueriesEvaluated)
	}
	return report
}

// WorstQueries returns up to n queries with the lowest precision@5, stable on ties
func WorstQueries(report Report, n int) []QueryResult {
	sorted := make([]QueryResult, len(report.PerQuery))
	copy(sorted, report.PerQuery)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Precision[5] < sorted[j].Precision[5]
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// PrintResults writes a human-readable report to w
func PrintResults(w io.Writer, report Report) {
	fmt.Fprintln(w, "============================================================")
	fmt.Fprintln(w, "RETRIEVAL EVALUATION RESULTS")
	fmt.Fprintln(w, "============================================================")

	s := report.Summary
	fmt.Fprintln(w, "\nDataset Summary:")
	fmt.Fprintf(w, "  Total test queries: %d\n", s.TotalQueries)
	fmt.Fprintf(w, "  Queries with results: %d\n", s.QueriesEvaluated)
	fmt.Fprintf(w, "  Avg relevant images per query: %.1f\n", s.AverageRelevantPerQuery)
	fmt.Fprintf(w, "  Avg retrieved images per query: %.1f\n", s.AverageRetrievedPerQuery)

	fmt.Fprintln(w, "\nOverall Performance:")
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"k", "Precision", "Recall"})
	for _, k := range KValues {
		tw.Append([]string{
			fmt.Sprintf("%d", k),
			fmt.Sprintf("%.3f", report.AvgPrecision[k]),
			fmt.Sprintf("%.3f", report.AvgRecall[k]),
		})
	}
	tw.Render()
	fmt.Fprintf(w, "\n  Mean Reciprocal Rank: %.3f\n", report.AvgMRR)

	fmt.Fprintln(w, "\nWorst Performing Queries (by Precision@5):")
	for i, q := range WorstQueries(report, 3) {
		fmt.Fprintf(w, "  %d. Query %s: %s\n", i+1, q.QueryID, shorten(q.Query, 50))
		fmt.Fprintf(w, "     Precision@5: %.3f, MRR: %.3f\n", q.Precision[5], q.MRR)
	}
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
