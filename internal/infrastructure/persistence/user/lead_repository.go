// Package user provides the concrete SQL-based implementation of
// the lead repository.
package user

import (
	"database/sql"
	"time"

	"github.com/brightforge/brightforge-go/internal/domain/user"
	"github.com/brightforge/brightforge-go/internal/infrastructure/observability/logging"
	"github.com/brightforge/brightforge-go/internal/infrastructure/persistence/database"
	"github.com/brightforge/brightforge-go/pkg/config"
)

// SQLLeadRepository is the SQL-based implementation of the LeadRepository.
type SQLLeadRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLLeadRepository creates a new instance of the repository.
func NewSQLLeadRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLLeadRepository {
	return &SQLLeadRepository{
		db:     db,
		logger: logger,
	}
}

// FindByEmail retrieves a Lead by their email address.
func (r *SQLLeadRepository) FindByEmail(email string) (*user.Lead, error) {
	const query = `
		SELECT id, first_name, email, company, interest, message, session_id, channel, created_at
		FROM leads
		WHERE email = ?`

	start := time.Now()
	r.logger.Database().Debug("Loading lead by email", "email", email)

	row := r.db.QueryRow(query, email)
	lead, err := scanLead(row)
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Database().Debug("Lead not found by email", "email", email)
			return nil, nil
		}
		r.logger.Database().Error("Failed to load lead by email", "error", err.Error(), "email", email)
		return nil, err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return lead, nil
}

// Store persists a new lead. A second submission with the same email
// refreshes the mutable fields instead of failing on the unique index.
func (r *SQLLeadRepository) Store(lead *user.Lead) error {
	const query = `
		INSERT INTO leads (id, first_name, email, company, interest, message, session_id, channel, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			first_name = excluded.first_name,
			company = excluded.company,
			interest = excluded.interest,
			message = excluded.message,
			session_id = excluded.session_id,
			channel = excluded.channel`

	start := time.Now()
	r.logger.Database().Debug("Storing lead", "id", lead.ID, "email", lead.Email)

	_, err := r.db.Exec(query,
		lead.ID, lead.FirstName, lead.Email, lead.Company, lead.Interest,
		lead.Message, lead.SessionID, lead.Channel, lead.CreatedAt.UTC(),
	)
	if err != nil {
		r.logger.Database().Error("Failed to store lead", "error", err.Error(), "email", lead.Email)
		return err
	}

	duration := time.Since(start)
	r.logger.Database().Info("Lead stored", "id", lead.ID, "duration", duration)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

// Count returns the total number of captured leads.
func (r *SQLLeadRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM leads`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanLead(row *sql.Row) (*user.Lead, error) {
	var lead user.Lead
	var company, interest, message, sessionID, channel sql.NullString
	err := row.Scan(&lead.ID, &lead.FirstName, &lead.Email, &company, &interest,
		&message, &sessionID, &channel, &lead.CreatedAt)
	if err != nil {
		return nil, err
	}
	lead.Company = company.String
	lead.Interest = interest.String
	lead.Message = message.String
	lead.SessionID = sessionID.String
	lead.Channel = channel.String
	return &lead, nil
}
