package lesson

// interpretedFactor is the share of the requested time left for content when
// every line is interpreted, in percent.
const interpretedFactor = 65

// EstimateRuntime returns the content minutes available for a lesson of the
// requested length. Interpreted delivery keeps 65% of the time, but never
// less than MinMinutes.
func EstimateRuntime(minutes int, interpreted bool) int {
	if !interpreted {
		return minutes
	}
	return max(MinMinutes, minutes*interpretedFactor/100)
}
