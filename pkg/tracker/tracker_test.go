package tracker

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/brightforge/brightforge-go/internal/domain/tracking"
)

// recordingSender captures delivered snapshots in memory.
type recordingSender struct {
	mu    sync.Mutex
	sent  []*tracking.Snapshot
	fail  bool
	calls int
}

func (s *recordingSender) Send(snap *tracking.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fail {
		return errors.New("network down")
	}
	s.sent = append(s.sent, snap)
	return nil
}

func (s *recordingSender) sentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func (s *recordingSender) last() *tracking.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return nil
	}
	return s.sent[len(s.sent)-1]
}

func newTestTracker(sender Sender, debounce time.Duration) *Tracker {
	n := 0
	return New(Options{
		Sender:   sender,
		Debounce: debounce,
		NewID: func() string {
			n++
			return "session-1"
		},
	})
}

func TestEnsureSessionCreatesOnce(t *testing.T) {
	sender := &recordingSender{}
	tr := newTestTracker(sender, time.Hour)

	first := tr.EnsureSession("https://site.test/?utm_source=newsletter", "https://google.com/")
	second := tr.EnsureSession("https://site.test/pricing?utm_source=ads", "")

	if first.ID != second.ID {
		t.Fatalf("session recreated: %q vs %q", first.ID, second.ID)
	}
	if second.UTM[tracking.UTMSource] != "newsletter" {
		t.Errorf("first-touch source overwritten: %q", second.UTM[tracking.UTMSource])
	}
	if first.ReferrerHost != "google.com" {
		t.Errorf("referrerHost = %q, want google.com", first.ReferrerHost)
	}
}

func TestEnsureSessionAloneSyncsAfterDebounce(t *testing.T) {
	sender := &recordingSender{}
	tr := newTestTracker(sender, 50*time.Millisecond)

	tr.EnsureSession("https://site.test/", "")

	time.Sleep(150 * time.Millisecond)

	if got := sender.sentCount(); got != 1 {
		t.Fatalf("sent %d snapshots, want 1 for a single-page visit", got)
	}
	snap := sender.last()
	if len(snap.Pages) != 1 || snap.Pages[0].Path != "/" {
		t.Fatalf("snapshot pages = %+v, want the open landing visit", snap.Pages)
	}
}

func TestSetDeviceInfoSchedulesSync(t *testing.T) {
	sender := &recordingSender{}
	tr := newTestTracker(sender, 50*time.Millisecond)
	tr.EnsureSession("https://site.test/", "")
	time.Sleep(150 * time.Millisecond)

	tr.SetDeviceInfo(&tracking.DeviceInfo{Language: "en-US", ScreenWidth: 1440})
	time.Sleep(150 * time.Millisecond)

	if got := sender.sentCount(); got != 2 {
		t.Fatalf("sent %d snapshots, want 2", got)
	}
	snap := sender.last()
	if snap.DeviceInfo == nil || snap.DeviceInfo.Language != "en-US" {
		t.Fatalf("device info missing from snapshot: %+v", snap.DeviceInfo)
	}
}

func TestRecordNavigationDistinctConsecutivePaths(t *testing.T) {
	sender := &recordingSender{}
	tr := newTestTracker(sender, time.Hour)
	tr.EnsureSession("https://site.test/", "")

	tr.RecordNavigation("/")
	tr.RecordNavigation("/")
	tr.RecordNavigation("/pricing")
	tr.RecordNavigation("/pricing")
	tr.RecordNavigation("/")

	sess := tr.Session()
	if len(sess.Pages) != 3 {
		t.Fatalf("got %d page visits, want 3: %+v", len(sess.Pages), sess.Pages)
	}
	for i := 1; i < len(sess.Pages); i++ {
		if sess.Pages[i].Path == sess.Pages[i-1].Path {
			t.Fatalf("consecutive visits share path %q", sess.Pages[i].Path)
		}
	}
	for i, visit := range sess.Pages[:len(sess.Pages)-1] {
		if visit.Open() {
			t.Errorf("visit %d still open", i)
		}
	}
	if !sess.Pages[len(sess.Pages)-1].Open() {
		t.Error("latest visit should remain open")
	}
}

func TestDebounceCollapsesRapidChanges(t *testing.T) {
	sender := &recordingSender{}
	tr := newTestTracker(sender, 50*time.Millisecond)
	tr.EnsureSession("https://site.test/", "")

	tr.RecordNavigation("/")
	tr.RecordNavigation("/pricing")
	tr.RecordNavigation("/about")

	time.Sleep(150 * time.Millisecond)

	if got := sender.sentCount(); got != 1 {
		t.Fatalf("sent %d snapshots, want 1 collapsed delivery", got)
	}
	if snap := sender.last(); len(snap.Pages) != 3 {
		t.Fatalf("snapshot has %d pages, want 3", len(snap.Pages))
	}
}

func TestFlushClosesOpenVisit(t *testing.T) {
	sender := &recordingSender{}
	tr := newTestTracker(sender, time.Hour)
	tr.EnsureSession("https://site.test/", "")
	tr.RecordNavigation("/")

	tr.Flush()

	snap := sender.last()
	if snap == nil {
		t.Fatal("flush delivered nothing")
	}
	last := snap.Pages[len(snap.Pages)-1]
	if last.Open() {
		t.Fatal("flushed snapshot still has an open visit")
	}
	if last.DurationMs == nil || *last.DurationMs < 0 {
		t.Fatalf("bad duration on flushed visit: %+v", last)
	}
	if sess := tr.Session(); !sess.SentToServer {
		t.Error("session not marked sent after successful flush")
	}
}

func TestDeliveryFailureIsSwallowed(t *testing.T) {
	sender := &recordingSender{fail: true}
	tr := newTestTracker(sender, time.Hour)
	tr.EnsureSession("https://site.test/", "")
	tr.RecordNavigation("/")

	tr.Flush()

	if sender.calls == 0 {
		t.Fatal("sender never invoked")
	}
	sess := tr.Session()
	if sess == nil {
		t.Fatal("session lost after failed delivery")
	}
	if sess.SentToServer {
		t.Error("session marked sent despite delivery failure")
	}
}

func TestMergeAttributionFillsGapsOnly(t *testing.T) {
	sender := &recordingSender{}
	tr := newTestTracker(sender, time.Hour)
	tr.EnsureSession("https://site.test/?utm_source=newsletter", "")

	tr.MergeAttribution("https://site.test/pricing?utm_source=ads&utm_campaign=spring")

	sess := tr.Session()
	if sess.UTM[tracking.UTMSource] != "newsletter" {
		t.Errorf("source overwritten: %q", sess.UTM[tracking.UTMSource])
	}
	if sess.UTM[tracking.UTMCampaign] != "spring" {
		t.Errorf("campaign not merged: %q", sess.UTM[tracking.UTMCampaign])
	}
}

func TestRecordSubmissionShipsImmediately(t *testing.T) {
	sender := &recordingSender{}
	tr := newTestTracker(sender, time.Hour)
	tr.EnsureSession("https://site.test/", "")
	tr.RecordNavigation("/contact")

	tr.RecordSubmission("contact-form", "/contact", map[string]string{"interest": "golang-course"})

	if got := sender.sentCount(); got != 1 {
		t.Fatalf("sent %d snapshots, want immediate delivery", got)
	}
	snap := sender.last()
	if snap.Submission == nil || snap.Submission.FormID != "contact-form" {
		t.Fatalf("submission missing from snapshot: %+v", snap.Submission)
	}
}

func TestStorePersistsAcrossTrackers(t *testing.T) {
	store := NewMemoryStore()
	sender := &recordingSender{}

	first := New(Options{Store: store, Sender: sender, Debounce: time.Hour})
	created := first.EnsureSession("https://site.test/?utm_source=newsletter", "")

	second := New(Options{Store: store, Sender: sender, Debounce: time.Hour})
	restored := second.EnsureSession("https://site.test/pricing", "")

	if restored.ID != created.ID {
		t.Fatalf("restored session %q, want %q", restored.ID, created.ID)
	}
	if restored.UTM[tracking.UTMSource] != "newsletter" {
		t.Errorf("restored session lost attribution: %v", restored.UTM)
	}
}
