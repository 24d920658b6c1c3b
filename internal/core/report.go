package core

import (
	"fmt"
	"sort"
	"strings"
)

// ClassMetrics holds the per-class (or averaged) evaluation scores.
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1-score"`
	Support   int     `json:"support"`
}

// Report is a classification report over the test split: one row per class
// plus the accuracy, macro avg and weighted avg aggregates.
type Report struct {
	PerClass    map[string]ClassMetrics `json:"per_class"`
	Accuracy    float64                 `json:"accuracy"`
	MacroAvg    ClassMetrics            `json:"macro avg"`
	WeightedAvg ClassMetrics            `json:"weighted avg"`
}

// classificationReport compares predictions against true labels. Both
// slices hold encoded class ids; classes maps ids back to label names.
func classificationReport(classes []string, yTrue, yPred []int) Report {
	n := len(yTrue)
	truePos := make([]int, len(classes))
	predicted := make([]int, len(classes))
	actual := make([]int, len(classes))

	correct := 0
	for i := range yTrue {
		actual[yTrue[i]]++
		predicted[yPred[i]]++
		if yTrue[i] == yPred[i] {
			truePos[yTrue[i]]++
			correct++
		}
	}

	report := Report{PerClass: make(map[string]ClassMetrics, len(classes))}
	if n > 0 {
		report.Accuracy = float64(correct) / float64(n)
	}

	for id, name := range classes {
		m := ClassMetrics{Support: actual[id]}
		if predicted[id] > 0 {
			m.Precision = float64(truePos[id]) / float64(predicted[id])
		}
		if actual[id] > 0 {
			m.Recall = float64(truePos[id]) / float64(actual[id])
		}
		if m.Precision+m.Recall > 0 {
			m.F1Score = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		report.PerClass[name] = m

		report.MacroAvg.Precision += m.Precision / float64(len(classes))
		report.MacroAvg.Recall += m.Recall / float64(len(classes))
		report.MacroAvg.F1Score += m.F1Score / float64(len(classes))

		weight := float64(m.Support) / float64(n)
		report.WeightedAvg.Precision += m.Precision * weight
		report.WeightedAvg.Recall += m.Recall * weight
		report.WeightedAvg.F1Score += m.F1Score * weight
	}
	report.MacroAvg.Support = n
	report.WeightedAvg.Support = n
	return report
}

// String renders the report as an aligned console table, one row per class
// followed by the aggregate rows.
func (r Report) String() string {
	names := make([]string, 0, len(r.PerClass))
	width := len("weighted avg")
	for name := range r.PerClass {
		names = append(names, name)
		if len(name) > width {
			width = len(name)
		}
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "%*s  precision    recall  f1-score   support\n\n", width, "")
	for _, name := range names {
		m := r.PerClass[name]
		fmt.Fprintf(&b, "%*s  %9.2f  %8.2f  %8.2f  %8d\n", width, name, m.Precision, m.Recall, m.F1Score, m.Support)
	}
	fmt.Fprintf(&b, "\n%*s  %9s  %8s  %8.2f  %8d\n", width, "accuracy", "", "", r.Accuracy, r.MacroAvg.Support)
	fmt.Fprintf(&b, "%*s  %9.2f  %8.2f  %8.2f  %8d\n", width, "macro avg", r.MacroAvg.Precision, r.MacroAvg.Recall, r.MacroAvg.F1Score, r.MacroAvg.Support)
	fmt.Fprintf(&b, "%*s  %9.2f  %8.2f  %8.2f  %8d\n", width, "weighted avg", r.WeightedAvg.Precision, r.WeightedAvg.Recall, r.WeightedAvg.F1Score, r.WeightedAvg.Support)
	return b.String()
}
