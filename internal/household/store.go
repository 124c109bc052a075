package household

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Business-rule errors surfaced to the API layer.
var (
	ErrNotOwner      = fmt.Errorf("only the household owner can do this")
	ErrInviteExists  = fmt.Errorf("a pending invitation for this email already exists")
	ErrInviteExpired = fmt.Errorf("invitation has expired")
)

const inviteTTL = 7 * 24 * time.Hour

// Store persists households, profiles and invitations in PostgreSQL.
type Store struct {
	db *sqlx.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS households (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		created_by TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		household_id UUID NOT NULL REFERENCES households(id),
		display_name TEXT NOT NULL,
		email TEXT,
		avatar_url TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS household_invitations (
		id UUID PRIMARY KEY,
		household_id UUID NOT NULL REFERENCES households(id) ON DELETE CASCADE,
		email TEXT NOT NULL,
		invited_by TEXT NOT NULL,
		token UUID NOT NULL UNIQUE,
		status TEXT NOT NULL DEFAULT 'pending',
		expires_at TIMESTAMPTZ NOT NULL,
		responded_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
}

// NewStore creates a household store and bootstraps its tables.
func NewStore(db *sqlx.DB) (*Store, error) {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create household tables: %w", err)
		}
	}
	return &Store{db: db}, nil
}

const profileColumns = `id, household_id, display_name, email, avatar_url, created_at, updated_at`
const inviteColumns = `id, household_id, email, invited_by, token, status, expires_at, responded_at, created_at`

// EnsureProfile returns the profile for a user id, creating the profile and
// a personal household on first sight.
func (s *Store) EnsureProfile(ctx context.Context, userID, displayName string, email *string) (*Profile, error) {
	var profile Profile
	err := s.db.GetContext(ctx, &profile,
		"SELECT "+profileColumns+" FROM profiles WHERE id = $1", userID)
	if err == nil {
		return &profile, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if displayName == "" {
		displayName = "Member"
	}

	err = s.withTx(ctx, func(tx *sqlx.Tx) error {
		householdID := uuid.NewString()
		_, err := tx.ExecContext(ctx,
			"INSERT INTO households (id, name, created_by) VALUES ($1, $2, $3)",
			householdID, displayName+"'s Household", userID)
		if err != nil {
			return fmt.Errorf("failed to create household: %w", err)
		}
		return tx.GetContext(ctx, &profile, `
			INSERT INTO profiles (id, household_id, display_name, email)
			VALUES ($1, $2, $3, $4)
			RETURNING `+profileColumns,
			userID, householdID, displayName, email)
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Get returns a household with its members. Returns nil when missing.
func (s *Store) Get(ctx context.Context, id string) (*Household, error) {
	var h Household
	err := s.db.GetContext(ctx, &h,
		"SELECT id, name, created_by, created_at FROM households WHERE id = $1", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load household: %w", err)
	}

	err = s.db.SelectContext(ctx, &h.Members,
		"SELECT "+profileColumns+" FROM profiles WHERE household_id = $1 ORDER BY display_name", id)
	if err != nil {
		return nil, fmt.Errorf("failed to load household members: %w", err)
	}
	return &h, nil
}

// UpdateProfile applies a partial profile update. Returns nil when missing.
func (s *Store) UpdateProfile(ctx context.Context, userID string, p ProfilePatch) (*Profile, error) {
	set := []string{"updated_at = NOW()"}
	args := []interface{}{userID}

	add := func(col string, v interface{}) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.DisplayName != nil {
		add("display_name", *p.DisplayName)
	}
	if p.AvatarURL != nil {
		add("avatar_url", *p.AvatarURL)
	}

	query := fmt.Sprintf("UPDATE profiles SET %s WHERE id = $1 RETURNING %s",
		strings.Join(set, ", "), profileColumns)

	var profile Profile
	if err := s.db.GetContext(ctx, &profile, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &profile, nil
}

// Rename changes a household's name. Only the owner may rename.
func (s *Store) Rename(ctx context.Context, householdID, userID, name string) (*Household, error) {
	owner, err := s.isOwner(ctx, householdID, userID)
	if err != nil {
		return nil, err
	}
	if !owner {
		return nil, ErrNotOwner
	}

	if _, err := s.db.ExecContext(ctx,
		"UPDATE households SET name = $2 WHERE id = $1", householdID, name); err != nil {
		return nil, fmt.Errorf("failed to rename household: %w", err)
	}
	return s.Get(ctx, householdID)
}

func (s *Store) isOwner(ctx context.Context, householdID, userID string) (bool, error) {
	var createdBy string
	err := s.db.GetContext(ctx, &createdBy,
		"SELECT created_by FROM households WHERE id = $1", householdID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to load household: %w", err)
	}
	return createdBy == userID, nil
}

// Invite creates a pending invitation. Only the owner can invite, and at
// most one pending invitation per email exists at a time.
func (s *Store) Invite(ctx context.Context, householdID, userID, email string) (*Invitation, error) {
	owner, err := s.isOwner(ctx, householdID, userID)
	if err != nil {
		return nil, err
	}
	if !owner {
		return nil, ErrNotOwner
	}

	email = strings.ToLower(strings.TrimSpace(email))

	var count int
	err = s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM household_invitations
		WHERE household_id = $1 AND email = $2 AND status = 'pending' AND expires_at > NOW()`,
		householdID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending invitations: %w", err)
	}
	if count > 0 {
		return nil, ErrInviteExists
	}

	var inv Invitation
	err = s.db.GetContext(ctx, &inv, `
		INSERT INTO household_invitations (id, household_id, email, invited_by, token, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, 'pending', $6)
		RETURNING `+inviteColumns,
		uuid.NewString(), householdID, email, userID, uuid.NewString(), time.Now().Add(inviteTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}
	return &inv, nil
}

// PendingInvitations lists a household's open invitations.
func (s *Store) PendingInvitations(ctx context.Context, householdID string) ([]*Invitation, error) {
	var invites []*Invitation
	err := s.db.SelectContext(ctx, &invites, `
		SELECT `+inviteColumns+` FROM household_invitations
		WHERE household_id = $1 AND status = 'pending' AND expires_at > NOW()
		ORDER BY created_at DESC`, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invites, nil
}

// Accept moves the accepting user into the inviting household. Returns nil
// when no pending invitation matches the token.
func (s *Store) Accept(ctx context.Context, token, userID string) (*Household, error) {
	var inv Invitation
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &inv,
			"SELECT "+inviteColumns+" FROM household_invitations WHERE token = $1 AND status = 'pending' FOR UPDATE",
			token)
		if err != nil {
			return err
		}
		if time.Now().After(inv.ExpiresAt) {
			_, _ = tx.ExecContext(ctx,
				"UPDATE household_invitations SET status = 'expired' WHERE id = $1", inv.ID)
			return ErrInviteExpired
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE household_invitations SET status = 'accepted', responded_at = NOW() WHERE id = $1", inv.ID)
		if err != nil {
			return fmt.Errorf("failed to mark invitation accepted: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE profiles SET household_id = $2, updated_at = NOW() WHERE id = $1",
			userID, inv.HouseholdID)
		if err != nil {
			return fmt.Errorf("failed to move profile into household: %w", err)
		}
		return nil
	})
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return s.Get(ctx, inv.HouseholdID)
}

// Decline marks a pending invitation declined. Returns false when no pending
// invitation matches the token.
func (s *Store) Decline(ctx context.Context, token string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE household_invitations SET status = 'declined', responded_at = NOW()
		WHERE token = $1 AND status = 'pending'`, token)
	if err != nil {
		return false, fmt.Errorf("failed to decline invitation: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Leave moves a user out of a shared household into a fresh personal one and
// returns the updated profile.
func (s *Store) Leave(ctx context.Context, userID string) (*Profile, error) {
	var profile Profile
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var current Profile
		err := tx.GetContext(ctx, &current,
			"SELECT "+profileColumns+" FROM profiles WHERE id = $1 FOR UPDATE", userID)
		if err != nil {
			return err
		}

		householdID := uuid.NewString()
		_, err = tx.ExecContext(ctx,
			"INSERT INTO households (id, name, created_by) VALUES ($1, $2, $3)",
			householdID, current.DisplayName+"'s Household", userID)
		if err != nil {
			return fmt.Errorf("failed to create household: %w", err)
		}

		return tx.GetContext(ctx, &profile, `
			UPDATE profiles SET household_id = $2, updated_at = NOW()
			WHERE id = $1
			RETURNING `+profileColumns, userID, householdID)
	})
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
