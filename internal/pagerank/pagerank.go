package pagerank

const (
	// DefaultIterations is the fixed number of passes the solver runs.
	// There is no convergence check.
	DefaultIterations = 20

	damping   = 0.85
	initialPR = 1.0
)

// Compute runs the iterative PageRank algorithm over a directed link graph
// mapping document id -> ids it links to. Every document reachable as a
// source or a target participates. A dangling document (no outbound edges)
// spreads its rank uniformly to every other document.
//
//	PR(A) = (1-d) + d * (sum PR(T)/C(T) + sum PR(D)/N)
//
// where T ranges over documents linking to A, C(T) is T's out-degree, and D
// ranges over dangling documents other than A.
func Compute(links map[int64][]int64, iterations int) map[int64]float64 {
	pages := make(map[int64]bool)
	for source, targets := range links {
		pages[source] = true
		for _, target := range targets {
			pages[target] = true
		}
	}

	scores := make(map[int64]float64, len(pages))
	for page := range pages {
		scores[page] = initialPR
	}

	inbound := make(map[int64][]int64, len(pages))
	outDegree := make(map[int64]int, len(pages))
	dangling := make([]int64, 0)

	for source, targets := range links {
		outDegree[source] = len(targets)
		for _, target := range targets {
			inbound[target] = append(inbound[target], source)
		}
	}
	for page := range pages {
		if outDegree[page] == 0 {
			dangling = append(dangling, page)
		}
	}

	n := float64(len(pages))

	for i := 0; i < iterations; i++ {
		danglingMass := 0.0
		for _, page := range dangling {
			danglingMass += scores[page]
		}

		next := make(map[int64]float64, len(pages))
		for page := range pages {
			rank := 1 - damping

			for _, source := range inbound[page] {
				rank += damping * scores[source] / float64(outDegree[source])
			}

			// Dangling mass is spread to every document but the
			// dangling one itself.
			mass := danglingMass
			if outDegree[page] == 0 {
				mass -= scores[page]
			}
			rank += damping * mass / n

			next[page] = rank
		}
		scores = next
	}

	return scores
}

// Normalize scales scores so they sum to 1.0. A zero total leaves the
// input untouched.
func Normalize(scores map[int64]float64) map[int64]float64 {
	total := 0.0
	for _, score := range scores {
		total += score
	}
	if total == 0 {
		return scores
	}

	normalized := make(map[int64]float64, len(scores))
	for page, score := range scores {
		normalized[page] = score / total
	}
	return normalized
}
