package models

import (
	"time"
)

// TournamentStatus is the tournament lifecycle state.
type TournamentStatus string

const (
	TournamentUpcoming  TournamentStatus = "UPCOMING"
	TournamentOngoing   TournamentStatus = "ONGOING"
	TournamentCompleted TournamentStatus = "COMPLETED"
	TournamentCancelled TournamentStatus = "CANCELLED"
)

func (s TournamentStatus) Valid() bool {
	switch s {
	case TournamentUpcoming, TournamentOngoing, TournamentCompleted, TournamentCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s TournamentStatus) Terminal() bool {
	return s == TournamentCompleted || s == TournamentCancelled
}

// Tournament is admin-managed. Teams join it through TournamentTeam records.
type Tournament struct {
	ID               string           `json:"id" gorm:"primaryKey"`
	Name             string           `json:"name" gorm:"not null"`
	Slug             string           `json:"slug" gorm:"index"`
	Date             time.Time        `json:"date" gorm:"not null;index"`
	EndDate          *time.Time       `json:"end_date,omitempty"`
	Location         string           `json:"location"`
	Description      string           `json:"description" gorm:"type:text"`
	Rules            string           `json:"rules" gorm:"type:text"`
	Level            string           `json:"level"`
	ImageURL         string           `json:"image_url"`
	Status           TournamentStatus `json:"status" gorm:"type:varchar(16);default:'UPCOMING';index"`
	RegistrationOpen bool             `json:"registration_open" gorm:"default:true"`
	MaxTeams         int              `json:"max_teams" gorm:"default:0"` // 0 = unlimited
	EntryFee         float64          `json:"entry_fee" gorm:"default:0"`
	PrizePool        string           `json:"prize_pool"`
	SponsorName      string           `json:"sponsor_name"`
	CreatedAt        time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time        `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Teams []TournamentTeam `json:"teams,omitempty" gorm:"foreignKey:TournamentID"`

	// Calculated fields (not stored in DB)
	RegisteredTeams int64 `json:"registered_teams,omitempty" gorm:"-"`
}
