package variant

import "sort"

// Stats counts classification outcomes, typically per chromosome.
type Stats struct {
	counts [numOutcomes]int
}

// Add records one outcome.
func (s *Stats) Add(o Outcome) {
	if o >= 0 && o < numOutcomes {
		s.counts[o]++
	}
}

// AddN records n occurrences of an outcome.
func (s *Stats) AddN(o Outcome, n int) {
	if o >= 0 && o < numOutcomes {
		s.counts[o] += n
	}
}

// Count returns how many times the outcome was recorded.
func (s *Stats) Count(o Outcome) int {
	if o < 0 || o >= numOutcomes {
		return 0
	}
	return s.counts[o]
}

// Merge adds other's counters into s.
func (s *Stats) Merge(other *Stats) {
	for i := range s.counts {
		s.counts[i] += other.counts[i]
	}
}

// Stored returns the number of calls that produced a record.
func (s *Stats) Stored() int {
	return s.counts[OutcomeInsertion] + s.counts[OutcomeDeletion] + s.counts[OutcomeStructuralVariant]
}

// Skipped returns the number of calls dropped by the classifier.
func (s *Stats) Skipped() int {
	n := 0
	for o := OutcomeNoVariation; o < numOutcomes; o++ {
		n += s.counts[o]
	}
	return n
}

// Total returns the number of classified calls.
func (s *Stats) Total() int {
	n := 0
	for _, c := range s.counts {
		n += c
	}
	return n
}

// Counts returns the non-zero counters keyed by outcome name.
func (s *Stats) Counts() map[string]int {
	m := make(map[string]int)
	for o, c := range s.counts {
		if c > 0 {
			m[Outcome(o).String()] = c
		}
	}
	return m
}

// Outcomes returns every outcome in declaration order.
func Outcomes() []Outcome {
	out := make([]Outcome, numOutcomes)
	for i := range out {
		out[i] = Outcome(i)
	}
	return out
}

// SortedNames returns the counter names of s in alphabetical order.
func (s *Stats) SortedNames() []string {
	counts := s.Counts()
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
