package household

import "time"

// Invitation statuses.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
	StatusExpired  = "expired"
)

// Household groups the people who share recipes, plans and inventory. The
// creator is its owner.
type Household struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedBy string    `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Members []*Profile `json:"members,omitempty"`
}

// Profile is a user's profile. The id is the subject of their auth token;
// every profile belongs to exactly one household.
type Profile struct {
	ID          string    `json:"id" db:"id"`
	HouseholdID string    `json:"household_id" db:"household_id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Email       *string   `json:"email" db:"email"`
	AvatarURL   *string   `json:"avatar_url" db:"avatar_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Invitation invites an email address into a household. Pending invitations
// expire a week after creation.
type Invitation struct {
	ID          string     `json:"id" db:"id"`
	HouseholdID string     `json:"household_id" db:"household_id"`
	Email       string     `json:"email" db:"email"`
	InvitedBy   string     `json:"invited_by" db:"invited_by"`
	Token       string     `json:"token" db:"token"`
	Status      string     `json:"status" db:"status"`
	ExpiresAt   time.Time  `json:"expires_at" db:"expires_at"`
	RespondedAt *time.Time `json:"responded_at" db:"responded_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// ProfilePatch carries partial profile updates.
type ProfilePatch struct {
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}
