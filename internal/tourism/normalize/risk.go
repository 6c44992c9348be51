package normalize

import (
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/i474232898/tourism-dashboard/internal/tourism/view"
)

// advisoryKeys are free-text members of a risk row, never chart slices.
var advisoryKeys = map[string]bool{
	"health_alerts":        true,
	"safety_suggestions":   true,
	"insurance_available":  true,
	"major_disaster_years": true,
	"hotspot_districts":    true,
}

var identityKeys = map[string]bool{
	"state":      true,
	"state_name": true,
	"name":       true,
}

// Risk builds the risk chart input. It accepts a flat backend row, a
// nested {"risks": {...}} mapping, or the legacy {"risks": [{"type",
// "level"}]} list.
func Risk(raw []byte) view.RiskProfile {
	r := root(raw)
	profile := view.RiskProfile{
		Entries:            []view.RiskEntry{},
		HealthAlerts:       text(field(r, "health_alerts")),
		SafetySuggestions:  text(field(r, "safety_suggestions")),
		InsuranceAvailable: text(field(r, "insurance_available")),
		MajorDisasterYears: text(field(r, "major_disaster_years")),
		HotspotDistricts:   text(field(r, "hotspot_districts")),
	}

	risks := field(r, "risks")
	switch {
	case risks.IsArray():
		for _, item := range risks.Array() {
			key := text(field(item, "type", "name", "key"))
			if key == "" {
				continue
			}
			if e, ok := riskEntry(key, field(item, "level", "value", "severity")); ok {
				profile.Entries = append(profile.Entries, e)
			}
		}
	case risks.IsObject():
		risks.ForEach(func(key, value gjson.Result) bool {
			if e, ok := riskEntry(key.String(), value); ok {
				profile.Entries = append(profile.Entries, e)
			}
			return true
		})
	case r.IsObject():
		r.ForEach(func(key, value gjson.Result) bool {
			k := key.String()
			if advisoryKeys[k] || identityKeys[k] {
				return true
			}
			if e, ok := riskEntry(k, value); ok {
				profile.Entries = append(profile.Entries, e)
			}
			return true
		})
	}
	return profile
}

// riskEntry keeps finite numbers (zero included) and non-empty strings
// other than "nan". Everything else is dropped.
func riskEntry(key string, value gjson.Result) (view.RiskEntry, bool) {
	e := view.RiskEntry{Key: key, Label: RiskLabel(key)}
	switch value.Type {
	case gjson.Number:
		f, ok := number(value)
		if !ok {
			return e, false
		}
		e.Numeric = &f
		e.ChartValue = f
		return e, true
	case gjson.String:
		s := strings.TrimSpace(value.Str)
		if s == "" || isNaNText(s) {
			return e, false
		}
		e.Text = s
		e.ChartValue = 1
		return e, true
	default:
		return e, false
	}
}

// RiskLabel turns flood_risk into "Flood Risk".
func RiskLabel(key string) string {
	// Casers are stateful, so one per call.
	return cases.Title(language.English, cases.NoLower).String(strings.ReplaceAll(key, "_", " "))
}

// RiskLevel buckets a 0-1 severity: up to 0.3 is Low, up to 0.6 Medium.
func RiskLevel(severity float64) string {
	scaled := severity * 10
	switch {
	case scaled <= 3:
		return "Low"
	case scaled <= 6:
		return "Medium"
	default:
		return "High"
	}
}

// AverageRisk averages the numeric severities; descriptive ones count as 0.
func AverageRisk(entries []view.RiskEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	var sum float64
	for _, e := range entries {
		if e.Numeric != nil {
			sum += *e.Numeric
		}
	}
	return sum / float64(len(entries))
}
