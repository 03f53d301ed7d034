// workflow holds the registration/approval state machine: which tournament
// and team-status transitions are legal, and the rules a new registration
// must pass. Everything here is pure; persistence and authorization live in
// the services.
package workflow

import (
	"basketball-tournament-api/apperrors"
	"basketball-tournament-api/models"
)

const (
	MinTeamNameLen = 3
	MinPlayers     = 3
)

// tournamentNext lists the single forward transition per state. CANCELLED is
// handled separately: it is reachable from any non-terminal state.
var tournamentNext = map[models.TournamentStatus]models.TournamentStatus{
	models.TournamentUpcoming: models.TournamentOngoing,
	models.TournamentOngoing:  models.TournamentCompleted,
}

// CanTransitionTournament reports whether from -> to is a legal move.
// No state may be skipped.
func CanTransitionTournament(from, to models.TournamentStatus) bool {
	if to == models.TournamentCancelled {
		return !from.Terminal()
	}
	return tournamentNext[from] == to
}

// TransitionTournament validates from -> to. A repeat of the current status
// is a no-op, not an error.
func TransitionTournament(from, to models.TournamentStatus) error {
	if !to.Valid() {
		return apperrors.ErrInvalidStateTransition
	}
	if from == to {
		return nil
	}
	if !CanTransitionTournament(from, to) {
		return apperrors.ErrInvalidStateTransition
	}
	return nil
}

// CanTransitionTeam reports whether a TournamentTeam may move from -> to.
// PENDING -> {APPROVED, REJECTED}; APPROVED -> COMPLETED once the tournament
// itself completes.
func CanTransitionTeam(from, to models.TeamStatus) bool {
	switch from {
	case models.TeamPending:
		return to == models.TeamApproved || to == models.TeamRejected
	case models.TeamApproved:
		return to == models.TeamCompleted
	}
	return false
}

// TransitionTeam validates from -> to, treating a repeat of the current
// status as a no-op. Re-approving an approved team must not fail and must
// not count twice; the caller increments stats only on an actual
// PENDING -> APPROVED move.
func TransitionTeam(from, to models.TeamStatus) error {
	if !to.Valid() {
		return apperrors.ErrInvalidStateTransition
	}
	if from == to {
		return nil
	}
	if !CanTransitionTeam(from, to) {
		return apperrors.ErrInvalidStateTransition
	}
	return nil
}

// ValidateRegistration applies the registration-creation rules and returns
// the normalized roster (captain inserted if absent, duplicates dropped,
// order preserved).
//
// The duplicate-team-name rule is deliberately NOT checked here: the unique
// index on (tournament_id, team_name) is the source of truth, and the insert
// attempt itself decides the race.
func ValidateRegistration(t *models.Tournament, teamName string, captainID string, playerIDs []string) ([]string, error) {
	if t == nil {
		return nil, apperrors.ErrNotFound
	}
	if t.Status != models.TournamentUpcoming || !t.RegistrationOpen {
		return nil, apperrors.ErrRegistrationClosed
	}
	if len(teamName) < MinTeamNameLen {
		return nil, apperrors.ErrInvalidTeamName
	}

	roster := NormalizeRoster(captainID, playerIDs)
	if len(roster) < MinPlayers {
		return nil, apperrors.ErrInsufficientPlayers
	}
	return roster, nil
}

// NormalizeRoster dedupes playerIDs and guarantees the captain is present.
func NormalizeRoster(captainID string, playerIDs []string) []string {
	seen := make(map[string]bool, len(playerIDs)+1)
	roster := make([]string, 0, len(playerIDs)+1)
	for _, id := range playerIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		roster = append(roster, id)
	}
	if !seen[captainID] {
		roster = append(roster, captainID)
	}
	return roster
}
