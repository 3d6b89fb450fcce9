package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/brightforge/brightforge-go/internal/domain/user"
	"github.com/brightforge/brightforge-go/pkg/config"
)

type fakeLeadRepo struct {
	mu    sync.Mutex
	leads map[string]*user.Lead
}

func newFakeLeadRepo() *fakeLeadRepo {
	return &fakeLeadRepo{leads: make(map[string]*user.Lead)}
}

func (f *fakeLeadRepo) FindByEmail(email string) (*user.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.leads[email], nil
}

func (f *fakeLeadRepo) Store(lead *user.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *lead
	f.leads[lead.Email] = &copied
	return nil
}

func (f *fakeLeadRepo) Count() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.leads), nil
}

type fakeEmailService struct {
	mu   sync.Mutex
	sent []*user.Lead
	err  error
	done chan struct{}
}

func (f *fakeEmailService) SendLeadNotification(lead *user.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, lead)
	if f.done != nil {
		close(f.done)
		f.done = nil
	}
	return f.err
}

func TestCaptureLeadStoresAndNotifies(t *testing.T) {
	logger, perf := testDeps(t)
	repo := newFakeLeadRepo()
	emailSvc := &fakeEmailService{done: make(chan struct{})}
	done := emailSvc.done

	config.JWTSecret = "test-jwt-secret"
	svc := NewLeadService(logger, perf, repo, emailSvc)

	result, err := svc.CaptureLead(&CaptureLeadRequest{
		FirstName: "  Dana ",
		Email:     "Dana@Example.COM",
		Company:   "Acme",
		Interest:  "go-fundamentals",
		SessionID: "sess-1",
		Channel:   "organic",
	})
	if err != nil {
		t.Fatalf("CaptureLead: %v", err)
	}
	if !result.Stored {
		t.Fatal("lead not stored")
	}
	if result.Lead.FirstName != "Dana" || result.Lead.Email != "dana@example.com" {
		t.Errorf("normalization wrong: %+v", result.Lead)
	}
	if result.ProfileToken == "" {
		t.Error("profile token not issued with JWT secret configured")
	}

	profile := svc.DecodeProfileToken(result.ProfileToken)
	if profile == nil || profile.Email != "dana@example.com" {
		t.Fatalf("decoded profile = %+v", profile)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("notification email never sent")
	}
}

func TestCaptureLeadValidation(t *testing.T) {
	logger, perf := testDeps(t)
	svc := NewLeadService(logger, perf, newFakeLeadRepo(), nil)

	cases := []CaptureLeadRequest{
		{FirstName: "", Email: "a@b.com"},
		{FirstName: "Dana", Email: ""},
		{FirstName: "Dana", Email: "not-an-email"},
		{FirstName: "   ", Email: "a@b.com"},
	}
	for _, req := range cases {
		if _, err := svc.CaptureLead(&req); !errors.Is(err, ErrInvalidLead) {
			t.Errorf("CaptureLead(%+v) err = %v, want ErrInvalidLead", req, err)
		}
	}
}

func TestCaptureLeadRepeatKeepsIdentity(t *testing.T) {
	logger, perf := testDeps(t)
	repo := newFakeLeadRepo()
	svc := NewLeadService(logger, perf, repo, nil)

	first, err := svc.CaptureLead(&CaptureLeadRequest{FirstName: "Dana", Email: "dana@example.com"})
	if err != nil {
		t.Fatalf("first capture: %v", err)
	}
	second, err := svc.CaptureLead(&CaptureLeadRequest{FirstName: "Dana", Email: "dana@example.com", Company: "Acme"})
	if err != nil {
		t.Fatalf("second capture: %v", err)
	}

	if second.Lead.ID != first.Lead.ID {
		t.Errorf("repeat submission changed lead id: %q vs %q", second.Lead.ID, first.Lead.ID)
	}
	if stored, _ := repo.FindByEmail("dana@example.com"); stored.Company != "Acme" {
		t.Errorf("repeat submission did not refresh fields: %+v", stored)
	}
}

func TestCaptureLeadWithoutStorage(t *testing.T) {
	logger, perf := testDeps(t)
	svc := NewLeadService(logger, perf, nil, nil)

	result, err := svc.CaptureLead(&CaptureLeadRequest{FirstName: "Dana", Email: "dana@example.com"})
	if err != nil {
		t.Fatalf("CaptureLead: %v", err)
	}
	if result.Stored {
		t.Fatal("stored = true with no repository")
	}
}
