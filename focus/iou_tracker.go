package focus

import (
	"container/heap"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// IoUTracker hands out stable tracking identifiers to candidates coming from detectors without tracking.
// Uses hybrid IoU + distance matching for better recovery when IoU is zero.
// Candidates which already carry an identifier are passed through untouched.
// Assigned identifiers are negative (-1, -2, ...) so they never collide with detector identifiers,
// which are non-negative.
type IoUTracker struct {
	// Max no match (max number of frames when object could not be found again)
	maxNoMatch int
	// Combined score a match must exceed
	iouThreshold float64
	// Kalman filter time step
	dt float64

	tracks     []*track
	nextNumber int
	logger     *zap.Logger
}

// IoUTrackerOption configures optional IoUTracker parameters
type IoUTrackerOption func(*IoUTracker)

// WithTrackerLogger sets logger for track lifecycle events (debug level)
func WithTrackerLogger(logger *zap.Logger) IoUTrackerOption {
	return func(tracker *IoUTracker) {
		if logger != nil {
			tracker.logger = logger
		}
	}
}

// NewDefaultIoUTracker creates a default instance of IoUTracker.
// Default values: maxNoMatch=5, iouThreshold=0.1
func NewDefaultIoUTracker(opts ...IoUTrackerOption) *IoUTracker {
	return NewIoUTracker(5, 0.1, opts...)
}

// NewIoUTracker creates a new instance of IoUTracker with specified parameters.
func NewIoUTracker(maxNoMatch int, iouThreshold float64, opts ...IoUTrackerOption) *IoUTracker {
	tracker := &IoUTracker{
		maxNoMatch:   maxNoMatch,
		iouThreshold: iouThreshold,
		dt:           1.0,
		tracks:       make([]*track, 0),
		nextNumber:   -1,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(tracker)
	}
	return tracker
}

// Len returns number of alive tracks
func (tracker *IoUTracker) Len() int {
	return len(tracker.tracks)
}

// matchCandidate holds a candidate with its best match for the priority queue
type matchCandidate struct {
	score      float64
	trackIdx   int
	candidateI int
	index      int
}

// matchHeap implements heap.Interface for max-heap by score
type matchHeap []*matchCandidate

func (h matchHeap) Len() int { return len(h) }

// Less returns true if i has higher score (max-heap). Equal scores keep input order.
func (h matchHeap) Less(i, j int) bool {
	if h[i].score == h[j].score {
		return h[i].candidateI < h[j].candidateI
	}
	return h[i].score > h[j].score
}

func (h matchHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *matchHeap) Push(x any) {
	n := len(*h)
	item := x.(*matchCandidate)
	item.index = n
	*h = append(*h, item)
}

func (h *matchHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[0 : n-1]
	return item
}

// Assign returns copy of candidates where every untracked candidate got a tracking identifier.
// Order of candidates is preserved.
// A filter failure does not break the association: the candidate still gets the identifier of its
// track, the remaining bookkeeping is done and the failures are returned along with the full result.
func (tracker *IoUTracker) Assign(candidates []Candidate) ([]Candidate, error) {
	result := make([]Candidate, len(candidates))
	copy(result, candidates)

	pq := &matchHeap{}
	heap.Init(pq)
	for i := range result {
		if result[i].Tracked {
			continue
		}
		bestIdx := -1
		bestScore := 0.0
		for trackIdx, tr := range tracker.tracks {
			score := tr.matchScore(result[i].BBox)
			if score > bestScore {
				bestScore = score
				bestIdx = trackIdx
			}
		}
		heap.Push(pq, &matchCandidate{
			score:      bestScore,
			trackIdx:   bestIdx,
			candidateI: i,
		})
	}

	var updateErr error
	// Prevent double update of tracks
	reserved := make(map[int]bool)
	fresh := make([]*track, 0)

	// Process matches from highest score to lowest
	for pq.Len() > 0 {
		item := heap.Pop(pq).(*matchCandidate)
		bbox := result[item.candidateI].BBox
		if item.trackIdx >= 0 && !reserved[item.trackIdx] && item.score > tracker.iouThreshold {
			tr := tracker.tracks[item.trackIdx]
			tr.predict()
			if err := tr.update(bbox); err != nil {
				updateErr = multierr.Append(updateErr, err)
			}
			reserved[item.trackIdx] = true
			result[item.candidateI].TrackingID = tr.number
			result[item.candidateI].Tracked = true
			continue
		}
		// Register as a new track
		tr := newTrack(bbox, tracker.nextNumber, tracker.dt)
		tracker.nextNumber--
		fresh = append(fresh, tr)
		result[item.candidateI].TrackingID = tr.number
		result[item.candidateI].Tracked = true
	}

	// Handle unmatched tracks (predict forward) and drop the ones lost for too long
	alive := tracker.tracks[:0]
	for trackIdx, tr := range tracker.tracks {
		if !reserved[trackIdx] {
			tr.predict()
			tr.noMatchTimes++
		}
		if tr.noMatchTimes <= tracker.maxNoMatch {
			alive = append(alive, tr)
			continue
		}
		tracker.logger.Debug("Track expired",
			zap.Stringer("track", tr.id),
			zap.Int("tracking_id", tr.number),
			zap.Int("no_match_times", tr.noMatchTimes),
		)
	}
	tracker.tracks = append(alive, fresh...)
	return result, updateErr
}

// Reset drops all tracks. Identifiers keep growing so old ones are never reused.
func (tracker *IoUTracker) Reset() {
	tracker.tracks = tracker.tracks[:0]
}
