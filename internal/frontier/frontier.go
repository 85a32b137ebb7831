package frontier

import "sync"

/*
Frontier Responsibilities
- Maintain BFS ordering
- Deduplicate URLs by canonical form
- Enforce depth and page limits
- Prevent infinite traversal
- Knows nothing about:
	- fetching
	- parsing
	- digests
	- storage

It is a data structure + policy module, not a pipeline executor.

Dedup happens at admission: a submitted target is marked visited before it
is ever enqueued, so a canonical URL can enter the queue at most once per
crawl run. The visited set only grows, and is bounded by the number of
distinct reachable URLs, which guarantees termination on cyclic graphs.

All operations are safe for concurrent use; no caller ever holds the
internal lock across a network call.
*/

type Frontier struct {
	mu       sync.Mutex
	queue    *FIFOQueue[CrawlTarget]
	visited  Set[string]
	maxDepth int
	maxPages int
	admitted int
}

// NewFrontier creates an empty frontier. maxDepth and maxPages of 0 mean
// unlimited.
func NewFrontier(maxDepth int, maxPages int) Frontier {
	return Frontier{
		queue:    NewFIFOQueue[CrawlTarget](),
		visited:  NewSet[string](),
		maxDepth: maxDepth,
		maxPages: maxPages,
	}
}

// Submit admits a target unless it was already seen or a crawl limit
// rejects it. Returns true when the target was enqueued.
func (f *Frontier) Submit(target CrawlTarget) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.visited.Contains(target.CanonicalKey()) {
		return false
	}
	if f.maxDepth > 0 && target.Depth() > f.maxDepth {
		return false
	}
	if f.maxPages > 0 && f.admitted >= f.maxPages {
		return false
	}

	f.visited.Add(target.CanonicalKey())
	f.admitted++
	f.queue.Enqueue(target)
	return true
}

// Next dequeues the oldest admitted target. The second return value is
// false when the queue is empty.
func (f *Frontier) Next() (CrawlTarget, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.queue.Dequeue()
}

// VisitedCount returns the number of distinct canonical URLs seen so far.
func (f *Frontier) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.visited.Size()
}

// QueuedCount returns the number of targets awaiting dispatch.
func (f *Frontier) QueuedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.queue.Size()
}
