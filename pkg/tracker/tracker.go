// Package tracker implements the client-resident visitor session tracker.
// The tracker owns the authoritative copy of one tab's session: it records
// page visit intervals, merges first-touch attribution, and ships debounced
// snapshots to the analytics ingest endpoint. Delivery is best effort;
// tracking never breaks the page it rides on.
package tracker

import (
	"net/url"
	"sync"
	"time"

	"github.com/brightforge/brightforge-go/internal/domain/tracking"
	"github.com/google/uuid"
)

// DefaultDebounce is how long the tracker waits after the last change
// before shipping a snapshot.
const DefaultDebounce = 2 * time.Second

// Options configures a Tracker. Zero values fall back to sensible
// defaults; Sender is required.
type Options struct {
	Store    Store
	Sender   Sender
	Debounce time.Duration
	Now      func() time.Time
	NewID    func() string
}

// Tracker drives one tab's session lifecycle.
type Tracker struct {
	mu       sync.Mutex
	store    Store
	sender   Sender
	debounce time.Duration
	now      func() time.Time
	newID    func() string

	session *tracking.Session
	timer   *time.Timer
}

// New creates a Tracker. Sender must not be nil.
func New(opts Options) *Tracker {
	t := &Tracker{
		store:    opts.Store,
		sender:   opts.Sender,
		debounce: opts.Debounce,
		now:      opts.Now,
		newID:    opts.NewID,
	}
	if t.store == nil {
		t.store = NewMemoryStore()
	}
	if t.debounce <= 0 {
		t.debounce = DefaultDebounce
	}
	if t.now == nil {
		t.now = time.Now
	}
	if t.newID == nil {
		t.newID = uuid.NewString
	}
	return t
}

// EnsureSession returns the tab's session, creating it on first call.
// A new session captures the referrer and any attribution parameters on
// the landing URL; an existing session merges them first-touch instead.
func (t *Tracker) EnsureSession(landingURL, referrer string) *tracking.Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		// Corrupt or partial stored state counts as absent.
		if stored, err := t.store.Load(); err == nil && stored != nil && stored.ID != "" {
			t.session = stored
		}
	}

	if t.session == nil {
		landing := pathOf(landingURL)
		t.session = &tracking.Session{
			ID:           t.newID(),
			StartedAt:    t.now(),
			Referrer:     referrer,
			ReferrerHost: tracking.ParseReferrerHost(referrer),
			UTM:          tracking.CaptureUTM(landingURL),
			LandingPath:  landing,
		}
		if landing != "" {
			t.session.Pages = append(t.session.Pages, tracking.PageVisit{
				Path:      landing,
				StartedAt: t.now(),
			})
		}
		t.persistLocked()
		t.scheduleSyncLocked()
		return t.snapshotSessionLocked()
	}

	t.session.UTM = tracking.MergeFirstTouch(t.session.UTM, tracking.CaptureUTM(landingURL))
	t.persistLocked()
	return t.snapshotSessionLocked()
}

// RecordNavigation closes the open page visit and opens one for path.
// Re-recording the currently open path is a no-op, so consecutive visits
// always have distinct paths.
func (t *Tracker) RecordNavigation(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return
	}

	if open := t.openVisitLocked(); open != nil {
		if open.Path == path {
			return
		}
		open.Close(t.now())
	}

	t.session.Pages = append(t.session.Pages, tracking.PageVisit{
		Path:      path,
		StartedAt: t.now(),
	})
	t.persistLocked()
	t.scheduleSyncLocked()
}

// MergeAttribution folds the URL's attribution parameters into the session
// without overwriting any already-captured value.
func (t *Tracker) MergeAttribution(rawURL string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return
	}
	t.session.UTM = tracking.MergeFirstTouch(t.session.UTM, tracking.CaptureUTM(rawURL))
	t.persistLocked()
	t.scheduleSyncLocked()
}

// SetDeviceInfo attaches client environment facts to the session.
func (t *Tracker) SetDeviceInfo(info *tracking.DeviceInfo) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return
	}
	t.session.DeviceInfo = info
	t.persistLocked()
	t.scheduleSyncLocked()
}

// RecordSubmission ships a form submission with the next snapshot,
// immediately rather than debounced.
func (t *Tracker) RecordSubmission(formID, path string, fields map[string]string) {
	t.mu.Lock()
	if t.session == nil {
		t.mu.Unlock()
		return
	}
	sub := &tracking.Submission{
		FormID:    formID,
		Path:      path,
		Fields:    fields,
		CreatedAt: t.now(),
	}
	snap := t.buildSnapshotLocked()
	snap.Submission = sub
	t.stopTimerLocked()
	t.mu.Unlock()

	t.deliver(snap)
}

// ScheduleSync arms the debounce timer. Repeated calls within the window
// collapse into one delivery.
func (t *Tracker) ScheduleSync() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return
	}
	t.scheduleSyncLocked()
}

// Flush cancels any pending debounce, closes the open page visit, and
// delivers a final snapshot synchronously. Called on tab teardown.
func (t *Tracker) Flush() {
	t.mu.Lock()
	if t.session == nil {
		t.mu.Unlock()
		return
	}
	if open := t.openVisitLocked(); open != nil {
		open.Close(t.now())
	}
	t.stopTimerLocked()
	snap := t.buildSnapshotLocked()
	t.persistLocked()
	t.mu.Unlock()

	t.deliver(snap)
}

// Session returns a copy of the current session, or nil before EnsureSession.
func (t *Tracker) Session() *tracking.Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return nil
	}
	return t.snapshotSessionLocked()
}

func (t *Tracker) scheduleSyncLocked() {
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.debounce, t.syncNow)
}

func (t *Tracker) stopTimerLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Tracker) syncNow() {
	t.mu.Lock()
	if t.session == nil {
		t.mu.Unlock()
		return
	}
	snap := t.buildSnapshotLocked()
	t.mu.Unlock()

	t.deliver(snap)
}

// deliver ships a snapshot and swallows any failure: the browser retains
// the authoritative session, so a lost snapshot only delays data.
func (t *Tracker) deliver(snap *tracking.Snapshot) {
	if err := t.sender.Send(snap); err != nil {
		return
	}
	t.mu.Lock()
	if t.session != nil && t.session.ID == snap.Session.ID {
		t.session.SentToServer = true
		t.persistLocked()
	}
	t.mu.Unlock()
}

func (t *Tracker) buildSnapshotLocked() *tracking.Snapshot {
	sess := t.snapshotSessionLocked()
	return &tracking.Snapshot{
		Session:    *sess,
		Pages:      sess.Pages,
		DeviceInfo: sess.DeviceInfo,
	}
}

func (t *Tracker) snapshotSessionLocked() *tracking.Session {
	copied := *t.session
	copied.Pages = make([]tracking.PageVisit, len(t.session.Pages))
	copy(copied.Pages, t.session.Pages)
	if t.session.UTM != nil {
		copied.UTM = make(map[string]string, len(t.session.UTM))
		for k, v := range t.session.UTM {
			copied.UTM[k] = v
		}
	}
	return &copied
}

func (t *Tracker) openVisitLocked() *tracking.PageVisit {
	if len(t.session.Pages) == 0 {
		return nil
	}
	last := &t.session.Pages[len(t.session.Pages)-1]
	if last.Open() {
		return last
	}
	return nil
}

func (t *Tracker) persistLocked() {
	// Local persistence is best effort for the same reason delivery is.
	_ = t.store.Save(t.snapshotSessionLocked())
}

func pathOf(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	if u, err := url.Parse(rawURL); err == nil {
		return u.Path
	}
	return ""
}
