package models

// MissingSentinel is the literal the source dataset uses instead of an empty cell.
const MissingSentinel = "NaN"

const (
	TrafficLow    = "Low"
	TrafficMedium = "Medium"
	TrafficHigh   = "High"
	TrafficJam    = "Jam"

	CityMetropolitan = "Metropolitan"
	CityUrban        = "Urban"
	CitySemiUrban    = "Semi-Urban"

	FestivalYes = "Yes"
	FestivalNo  = "No"
)

// TrafficDensities lists the traffic categories in the order the dashboard offers them.
var TrafficDensities = []string{TrafficLow, TrafficMedium, TrafficHigh, TrafficJam}

// Cities is the fixed city ordering used when results are concatenated per city.
var Cities = []string{CityMetropolitan, CityUrban, CitySemiUrban}

// IsTrafficDensity reports whether s is one of the known traffic categories.
func IsTrafficDensity(s string) bool {
	for _, t := range TrafficDensities {
		if t == s {
			return true
		}
	}
	return false
}
