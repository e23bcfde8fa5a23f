package textexec

import (
	"fmt"
	"sync"
)

// WorkingSetID is an opaque handle into a WorkingSet arena. Stages never
// hold a raw *WorkingSetMember pointer that could outlive the arena; they
// pass this id between Advance calls instead.
type WorkingSetID int64

// InvalidWorkingSetID is returned where no member applies.
const InvalidWorkingSetID WorkingSetID = 0

// WorkingSetMember is the pipeline's scratch record for one document in
// flight. It is owned by the WorkingSet allocator and only ever borrowed by
// stages.
type WorkingSetMember struct {
	RecordID    string
	HasRecordID bool
	KeyBlob     []byte

	// Computed is the per-document computed score side-channel (spec.md
	// §3's "computed" field). HasScore distinguishes "never scored" from
	// "scored 0".
	Computed float64
	HasScore bool

	// ForReview is set by Invalidate when this member's RecordID has been
	// physically deleted. Downstream stages must skip flagged members.
	ForReview bool

	// Diagnostic carries error detail for a Failure outcome.
	Diagnostic error

	// FetchedTokens holds the document's tokenized body once a Fetch stage
	// has resolved it; HasFetchedTokens distinguishes "not fetched yet"
	// from "fetched, empty document".
	FetchedTokens    []string
	HasFetchedTokens bool
}

// WorkingSet is a pooled arena of WorkingSetMember records keyed by
// WorkingSetID. It is the "working-set allocator" external collaborator of
// spec.md §1, given a concrete (but swappable) implementation here since the
// core needs *some* allocator to run standalone.
type WorkingSet struct {
	mu       sync.Mutex
	members  map[WorkingSetID]*WorkingSetMember
	freeList []WorkingSetID
	nextID   WorkingSetID
	capacity int // 0 means unbounded
}

// NewWorkingSet creates an arena. capacity <= 0 means unbounded.
func NewWorkingSet(capacity int) *WorkingSet {
	return &WorkingSet{
		members:  make(map[WorkingSetID]*WorkingSetMember),
		capacity: capacity,
	}
}

// ErrWorkingSetExhausted is returned by Allocate when the arena refuses a
// new member (spec.md §7.3: "working-set exhaustion").
var ErrWorkingSetExhausted = fmt.Errorf("working set exhausted")

// Allocate reserves a new member, reusing a freed slot when available.
func (ws *WorkingSet) Allocate() (WorkingSetID, *WorkingSetMember, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.capacity > 0 && len(ws.members) >= ws.capacity && len(ws.freeList) == 0 {
		return InvalidWorkingSetID, nil, ErrWorkingSetExhausted
	}

	var id WorkingSetID
	if n := len(ws.freeList); n > 0 {
		id = ws.freeList[n-1]
		ws.freeList = ws.freeList[:n-1]
	} else {
		ws.nextID++
		id = ws.nextID
	}
	m := &WorkingSetMember{}
	ws.members[id] = m
	return id, m, nil
}

// Get returns the member for id, or nil if it has been freed.
func (ws *WorkingSet) Get(id WorkingSetID) *WorkingSetMember {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.members[id]
}

// Free releases a member back to the arena.
func (ws *WorkingSet) Free(id WorkingSetID) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if _, ok := ws.members[id]; !ok {
		return
	}
	delete(ws.members, id)
	ws.freeList = append(ws.freeList, id)
}

// FlagForReview marks a member's RecordID as possibly invalidated, without
// freeing it; downstream stages that see ForReview must skip the member.
func (ws *WorkingSet) FlagForReview(id WorkingSetID) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if m, ok := ws.members[id]; ok {
		m.ForReview = true
		m.HasRecordID = false
	}
}

// Len reports the number of live (unfreed) members.
func (ws *WorkingSet) Len() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.members)
}
