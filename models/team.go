package models

import (
	"time"
)

// TeamStatus is a team's participation state within one tournament.
type TeamStatus string

const (
	TeamPending   TeamStatus = "PENDING"
	TeamApproved  TeamStatus = "APPROVED"
	TeamRejected  TeamStatus = "REJECTED"
	TeamCompleted TeamStatus = "COMPLETED"
)

func (s TeamStatus) Valid() bool {
	switch s {
	case TeamPending, TeamApproved, TeamRejected, TeamCompleted:
		return true
	}
	return false
}

// Team is a roster of players plus lifetime stats. The roster always
// contains the captain of every registration the team belongs to.
type Team struct {
	ID                string    `json:"id" gorm:"primaryKey"`
	Name              string    `json:"name" gorm:"not null;index"`
	LogoURL           string    `json:"logo_url"`
	TournamentsPlayed int       `json:"tournaments_played" gorm:"default:0"`
	TournamentsWon    int       `json:"tournaments_won" gorm:"default:0"`
	CreatedAt         time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Players []User `json:"players,omitempty" gorm:"many2many:team_players"`
}

// TournamentTeam is the join record tracking a team's participation status
// within one tournament. Exactly one exists per (tournament, team); the
// unique index makes the insert itself the uniqueness check.
type TournamentTeam struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	TournamentID string     `json:"tournament_id" gorm:"not null;uniqueIndex:idx_tournament_team"`
	TeamID       string     `json:"team_id" gorm:"not null;uniqueIndex:idx_tournament_team"`
	Status       TeamStatus `json:"status" gorm:"type:varchar(16);default:'PENDING';index"`
	Position     *int       `json:"position,omitempty"` // final placement, set when the tournament completes
	RegisteredAt time.Time  `json:"registered_at" gorm:"autoCreateTime"`

	Tournament Tournament `json:"tournament,omitempty" gorm:"foreignKey:TournamentID"`
	Team       Team       `json:"team,omitempty" gorm:"foreignKey:TeamID"`
}

// Registration is the captain-facing view of a team's entry into a
// tournament. Status is not stored here; it is read through the linked
// TournamentTeam so the two can never disagree. The unique index on
// (tournament_id, team_name) is the duplicate-name guard: two concurrent
// submissions race on the insert, and exactly one wins.
type Registration struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	TournamentID     string    `json:"tournament_id" gorm:"not null;uniqueIndex:idx_tournament_team_name"`
	TeamName         string    `json:"team_name" gorm:"not null;uniqueIndex:idx_tournament_team_name"`
	TeamID           string    `json:"team_id" gorm:"not null;index"`
	TournamentTeamID string    `json:"tournament_team_id" gorm:"not null;index"`
	CaptainID        string    `json:"captain_id" gorm:"not null;index"`
	RegisteredAt     time.Time `json:"registered_at" gorm:"autoCreateTime"`

	Team           Team           `json:"team,omitempty" gorm:"foreignKey:TeamID"`
	TournamentTeam TournamentTeam `json:"-" gorm:"foreignKey:TournamentTeamID"`

	// Populated from the TournamentTeam on read.
	Status TeamStatus `json:"status" gorm:"-"`
}
