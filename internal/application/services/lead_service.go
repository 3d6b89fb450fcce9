package services

import (
	"errors"
	"strings"
	"time"

	"github.com/brightforge/brightforge-go/internal/domain/user"
	"github.com/brightforge/brightforge-go/internal/infrastructure/email"
	"github.com/brightforge/brightforge-go/internal/infrastructure/observability/logging"
	"github.com/brightforge/brightforge-go/internal/infrastructure/observability/performance"
	"github.com/brightforge/brightforge-go/internal/infrastructure/security"
	"github.com/brightforge/brightforge-go/pkg/config"
)

// ErrInvalidLead rejects submissions missing a name or a plausible email.
var ErrInvalidLead = errors.New("lead requires a first name and email")

// LeadService captures leads from site forms, notifies the team, and
// issues profile tokens for returning visitors.
type LeadService struct {
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
	leadRepo     user.LeadRepository
	emailService email.Service
}

// NewLeadService creates a new lead service. Repository and email service
// are both optional; capture degrades gracefully without them.
func NewLeadService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, leadRepo user.LeadRepository, emailService email.Service) *LeadService {
	return &LeadService{
		logger:       logger,
		perfTracker:  perfTracker,
		leadRepo:     leadRepo,
		emailService: emailService,
	}
}

// CaptureLeadRequest is a form submission from the site.
type CaptureLeadRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Company   string `json:"company"`
	Interest  string `json:"interest"`
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
	Channel   string `json:"channel"`
}

// CaptureLeadResult holds the stored lead and its profile token.
type CaptureLeadResult struct {
	Lead         *user.Lead
	ProfileToken string
	Stored       bool
}

// CaptureLead validates and stores a lead. Email notification is sent in
// the background; a notification failure never fails the capture.
func (s *LeadService) CaptureLead(req *CaptureLeadRequest) (*CaptureLeadResult, error) {
	marker := s.perfTracker.StartOperation("leads:capture")
	defer marker.Complete()

	firstName := strings.TrimSpace(req.FirstName)
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))
	if firstName == "" || !strings.Contains(emailAddr, "@") {
		marker.SetSuccess(false)
		return nil, ErrInvalidLead
	}

	lead := &user.Lead{
		ID:        security.GenerateULID(),
		FirstName: firstName,
		Email:     emailAddr,
		Company:   strings.TrimSpace(req.Company),
		Interest:  strings.TrimSpace(req.Interest),
		Message:   strings.TrimSpace(req.Message),
		SessionID: req.SessionID,
		Channel:   req.Channel,
		CreatedAt: time.Now().UTC(),
	}

	stored := false
	if s.leadRepo != nil {
		if existing, err := s.leadRepo.FindByEmail(lead.Email); err == nil && existing != nil {
			lead.ID = existing.ID
			lead.CreatedAt = existing.CreatedAt
		}
		if err := s.leadRepo.Store(lead); err != nil {
			marker.SetError(err)
			s.logger.Leads().Error("Failed to store lead", "error", err.Error(), "email", lead.Email)
			return nil, err
		}
		stored = true
	}

	if s.emailService != nil {
		go func(l user.Lead) {
			if err := s.emailService.SendLeadNotification(&l); err != nil {
				s.logger.Email().Error("Lead notification failed", "error", err.Error(), "leadId", l.ID)
			}
		}(*lead)
	}

	result := &CaptureLeadResult{Lead: lead, Stored: stored}
	if config.JWTSecret != "" {
		profile := &user.Profile{
			LeadID:    lead.ID,
			Firstname: lead.FirstName,
			Email:     lead.Email,
			Company:   lead.Company,
		}
		token, err := security.GenerateProfileToken(profile, config.JWTSecret, config.ProfileTokenTTL)
		if err != nil {
			s.logger.Leads().Warn("Failed to issue profile token", "error", err.Error(), "leadId", lead.ID)
		} else {
			result.ProfileToken = token
		}
	}

	marker.SetSuccess(true)
	s.logger.Leads().Info("Lead captured", "leadId", lead.ID, "stored", stored, "channel", lead.Channel)
	return result, nil
}

// DecodeProfileToken validates a profile token and returns the embedded
// profile, or nil when the token is missing or invalid.
func (s *LeadService) DecodeProfileToken(tokenString string) *user.Profile {
	if tokenString == "" || config.JWTSecret == "" {
		return nil
	}
	claims, err := security.ValidateJWT(tokenString, config.JWTSecret)
	if err != nil {
		return nil
	}
	return security.GetProfileFromClaims(claims)
}
