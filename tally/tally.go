// Package tally counts room votes and picks a winner.
package tally

import (
	"github.com/daehan00/omechoo/storage"
	"sort"
)

type Result struct {
	Candidate storage.Candidate
	VoteCount int
	Voters    []string
}

// Aggregate returns one result per candidate, ordered by vote count descending.
// Candidates with equal counts keep their original order. Votes for unknown candidates are ignored.
func Aggregate(candidates []storage.Candidate, votes []*storage.Vote, nicknames map[string]string) []Result {
	results := make([]Result, len(candidates))
	index := make(map[string]int, len(candidates))
	for i, c := range candidates {
		results[i] = Result{Candidate: c, Voters: []string{}}
		index[c.ID] = i
	}

	for _, v := range votes {
		i, ok := index[v.CandidateID]
		if !ok {
			continue
		}
		results[i].VoteCount++
		if name, ok := nicknames[v.ParticipantID]; ok {
			results[i].Voters = append(results[i].Voters, name)
		}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].VoteCount > results[b].VoteCount
	})
	return results
}

// Leader returns the index of the single highest count. Ties for the top count and
// an all-zero tally have no leader.
func Leader(counts []int) (int, bool) {
	best, max, tied := -1, 0, false
	for i, n := range counts {
		switch {
		case n > max:
			best, max, tied = i, n, false
		case n == max && n > 0:
			tied = true
		}
	}
	if best < 0 || tied {
		return -1, false
	}
	return best, true
}

// Winner returns the leading candidate of the aggregated results, or nil.
func Winner(results []Result) *storage.Candidate {
	counts := make([]int, len(results))
	for i, r := range results {
		counts[i] = r.VoteCount
	}
	i, ok := Leader(counts)
	if !ok {
		return nil
	}
	winner := results[i].Candidate
	return &winner
}
