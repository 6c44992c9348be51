package normalize

import (
	"fmt"

	"github.com/i474232898/tourism-dashboard/internal/tourism/view"
)

// Insights derives the key-insight bullet list of the analysis view.
func Insights(state view.StateSummary, risk view.RiskProfile, trends []view.TrendPoint) []string {
	insights := []string{}

	if n := len(trends); n > 1 {
		latest, previous := trends[n-1], trends[n-2]
		if previous.Arrivals > 0 {
			growth := GrowthRate(float64(previous.Arrivals), float64(latest.Arrivals))
			insights = append(insights, fmt.Sprintf("Tourism growth: %s (%s to %s)",
				FormatGrowth(growth), previous.Period, latest.Period))
		}
	}
	if len(risk.Entries) > 0 {
		insights = append(insights, fmt.Sprintf("Average risk level: %.2f", round2(AverageRisk(risk.Entries))))
	}
	if state.BestTimeToVisit != "" && state.BestTimeToVisit != view.NotAvailable {
		insights = append(insights, "Best travel month: "+state.BestTimeToVisit)
	}
	if state.TopCategory != "" && state.TopCategory != view.NotAvailable {
		insights = append(insights, "Top category: "+state.TopCategory)
	}
	return insights
}
