package room

// ComputeStats aggregates votes in order. The mode is the first value to
// reach the running maximum count; the average only covers numeric votes.
func ComputeStats(votes []Vote) Stats {
	stats := Stats{TotalVotes: len(votes)}
	if len(votes) == 0 {
		return stats
	}

	freq := make(map[Vote]int, len(votes))
	maxCount := 0
	var mode Vote
	var sum float64
	numeric := 0
	for _, v := range votes {
		freq[v]++
		if freq[v] > maxCount {
			maxCount = freq[v]
			mode = v
		}
		if n, ok := v.Number(); ok {
			sum += n
			numeric++
		}
	}

	stats.UniqueValues = len(freq)
	stats.MostFrequent = &mode
	if numeric > 0 {
		avg := sum / float64(numeric)
		stats.Average = &avg
	}
	return stats
}

func (r *Room) ComputeStats() Stats { return ComputeStats(r.Votes.Values()) }
