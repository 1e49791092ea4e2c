package match

import (
	"runtime"
	"sync"

	"github.com/inodb/seqlift/internal/align"
	"github.com/inodb/seqlift/internal/seq"
)

// Candidate is one (strand, target) pairing to be scored for a query.
type Candidate struct {
	Seq       int
	Strand    seq.Strand
	TargetIdx int
	Query     string // query residues on Strand
	Target    *seq.Sequence
}

// Scored holds the alignment computed for a Candidate.
type Scored struct {
	Candidate
	Alignment *align.Alignment
}

// AlignCandidates aligns candidates using a pool of workers, each with its
// own Aligner taken from aligners. Results are sent in arrival order; use
// OrderedCollect to consume them in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func AlignCandidates(items <-chan Candidate, workers int, aligners *sync.Pool) <-chan Scored {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan Scored, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			al := aligners.Get().(*align.Aligner)
			defer aligners.Put(al)
			for item := range items {
				results <- Scored{
					Candidate: item,
					Alignment: al.Align(item.Query, item.Target.Residues),
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results and emits them as soon as the next
// expected sequence number is available. Blocks until results is closed.
func OrderedCollect(results <-chan Scored, fn func(Scored) error) error {
	pending := make(map[int]Scored)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
