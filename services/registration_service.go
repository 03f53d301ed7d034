package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"basketball-tournament-api/apperrors"
	"basketball-tournament-api/auth"
	"basketball-tournament-api/models"
	"basketball-tournament-api/workflow"
)

// RegistrationService owns the registration/approval workflow: forming a
// team entry into a tournament and moving it through PENDING -> APPROVED /
// REJECTED -> COMPLETED. Every mutation checks its policy predicate against
// a snapshot first, then performs validation + write inside one transaction.
type RegistrationService struct {
	DB *gorm.DB
}

func NewRegistrationService(db *gorm.DB) *RegistrationService {
	return &RegistrationService{DB: db}
}

// Register creates Team + TournamentTeam(PENDING) + Registration as one
// atomic unit. The caller becomes the captain. Duplicate team names are not
// pre-checked: the unique index on (tournament_id, team_name) decides, and
// a losing insert rolls the whole triple back.
func (s *RegistrationService) Register(ctx context.Context, p auth.Principal, tournamentID, teamName string, playerIDs []string) (*models.Registration, error) {
	if p.UserID == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	var reg models.Registration
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The row lock serializes concurrent registrations into the same
		// tournament, so the capacity count below and the registration_open
		// check cannot act on a stale snapshot.
		var tournament models.Tournament
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&tournament, "id = ?", tournamentID).Error; err != nil {
			return translateDB(err)
		}

		roster, err := workflow.ValidateRegistration(&tournament, teamName, p.UserID, playerIDs)
		if err != nil {
			return err
		}

		var players []models.User
		if err := tx.Find(&players, "id IN ?", roster).Error; err != nil {
			return translateDB(err)
		}
		if len(players) != len(roster) {
			return fmt.Errorf("%w: one or more players do not exist", apperrors.ErrNotFound)
		}

		if tournament.MaxTeams > 0 {
			var count int64
			if err := tx.Model(&models.TournamentTeam{}).
				Where("tournament_id = ? AND status IN ?", tournamentID,
					[]models.TeamStatus{models.TeamPending, models.TeamApproved}).
				Count(&count).Error; err != nil {
				return translateDB(err)
			}
			if count >= int64(tournament.MaxTeams) {
				return apperrors.ErrTournamentFull
			}
		}

		team := models.Team{
			ID:      uuid.NewString(),
			Name:    teamName,
			Players: players,
		}
		if err := tx.Create(&team).Error; err != nil {
			return translateDB(err)
		}

		tt := models.TournamentTeam{
			ID:           uuid.NewString(),
			TournamentID: tournamentID,
			TeamID:       team.ID,
			Status:       models.TeamPending,
		}
		if err := tx.Create(&tt).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.ErrDuplicateTeamName
			}
			return translateDB(err)
		}

		reg = models.Registration{
			ID:               uuid.NewString(),
			TournamentID:     tournamentID,
			TeamName:         teamName,
			TeamID:           team.ID,
			TournamentTeamID: tt.ID,
			CaptainID:        p.UserID,
		}
		if err := tx.Create(&reg).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.ErrDuplicateTeamName
			}
			return translateDB(err)
		}

		reg.Team = team
		reg.Status = tt.Status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// UpdateStatus moves a registration's TournamentTeam to newStatus. Admin
// only; the policy check runs before any storage read so non-admins learn
// nothing about whether the registration exists. On an actual
// PENDING -> APPROVED move the team's tournaments_played counter is
// incremented in the same transaction; repeating the same status is a no-op
// and never increments twice.
func (s *RegistrationService) UpdateStatus(ctx context.Context, p auth.Principal, registrationID string, newStatus models.TeamStatus) (*models.Registration, error) {
	if !auth.IsAdmin(p) {
		return nil, apperrors.ErrForbidden
	}

	var reg *models.Registration
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := loadRegistration(tx, registrationID)
		if err != nil {
			return err
		}

		current := r.TournamentTeam.Status
		if err := workflow.TransitionTeam(current, newStatus); err != nil {
			return err
		}
		if current == newStatus {
			reg = r
			return nil
		}

		if err := tx.Model(&models.TournamentTeam{}).
			Where("id = ?", r.TournamentTeamID).
			Update("status", newStatus).Error; err != nil {
			return translateDB(err)
		}
		if current == models.TeamPending && newStatus == models.TeamApproved {
			if err := tx.Model(&models.Team{}).
				Where("id = ?", r.TeamID).
				UpdateColumn("tournaments_played", gorm.Expr("tournaments_played + ?", 1)).Error; err != nil {
				return translateDB(err)
			}
		}

		r.TournamentTeam.Status = newStatus
		r.Status = newStatus
		reg = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// AddPlayer adds a user to the registered team's roster. Captain or admin
// only. Adding an existing roster member is a silent no-op.
func (s *RegistrationService) AddPlayer(ctx context.Context, p auth.Principal, registrationID, playerID string) (*models.Registration, error) {
	var reg *models.Registration
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := s.loadGuarded(tx, p, registrationID)
		if err != nil {
			return err
		}

		var player models.User
		if err := tx.First(&player, "id = ?", playerID).Error; err != nil {
			return translateDB(err)
		}

		for _, member := range r.Team.Players {
			if member.ID == player.ID {
				reg = r
				return nil
			}
		}

		// Append also adds the player to the loaded r.Team.Players slice.
		if err := tx.Model(&r.Team).Association("Players").Append(&player); err != nil {
			return translateDB(err)
		}
		reg = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// RemovePlayer removes a roster member. Captain or admin only; the captain
// can never be removed.
func (s *RegistrationService) RemovePlayer(ctx context.Context, p auth.Principal, registrationID, playerID string) (*models.Registration, error) {
	var reg *models.Registration
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := s.loadGuarded(tx, p, registrationID)
		if err != nil {
			return err
		}
		if playerID == r.CaptainID {
			return apperrors.ErrCannotRemoveCaptain
		}

		var player models.User
		if err := tx.First(&player, "id = ?", playerID).Error; err != nil {
			return translateDB(err)
		}
		if err := tx.Model(&r.Team).Association("Players").Delete(&player); err != nil {
			return translateDB(err)
		}

		kept := r.Team.Players[:0]
		for _, member := range r.Team.Players {
			if member.ID != playerID {
				kept = append(kept, member)
			}
		}
		r.Team.Players = kept
		reg = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// Delete removes the registration triple (registration, participation
// record, team + roster rows). Captain or admin only.
func (s *RegistrationService) Delete(ctx context.Context, p auth.Principal, registrationID string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := s.loadGuarded(tx, p, registrationID)
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.Registration{}, "id = ?", r.ID).Error; err != nil {
			return translateDB(err)
		}
		if err := tx.Delete(&models.TournamentTeam{}, "id = ?", r.TournamentTeamID).Error; err != nil {
			return translateDB(err)
		}
		if err := tx.Model(&r.Team).Association("Players").Clear(); err != nil {
			return translateDB(err)
		}
		if err := tx.Delete(&models.Team{}, "id = ?", r.TeamID).Error; err != nil {
			return translateDB(err)
		}
		return nil
	})
}

// GetByID returns a registration with its roster and current status.
func (s *RegistrationService) GetByID(ctx context.Context, registrationID string) (*models.Registration, error) {
	return loadRegistration(s.DB.WithContext(ctx), registrationID)
}

// ListAll returns every registration. Admin only.
func (s *RegistrationService) ListAll(ctx context.Context, p auth.Principal) ([]models.Registration, error) {
	if !auth.IsAdmin(p) {
		return nil, apperrors.ErrForbidden
	}
	var regs []models.Registration
	err := s.DB.WithContext(ctx).
		Preload("TournamentTeam").
		Preload("Team.Players").
		Order("registered_at DESC").
		Find(&regs).Error
	if err != nil {
		return nil, translateDB(err)
	}
	attachStatus(regs)
	return regs, nil
}

func (s *RegistrationService) ListByTournament(ctx context.Context, tournamentID string) ([]models.Registration, error) {
	var regs []models.Registration
	err := s.DB.WithContext(ctx).
		Preload("TournamentTeam").
		Preload("Team.Players").
		Where("tournament_id = ?", tournamentID).
		Order("registered_at DESC").
		Find(&regs).Error
	if err != nil {
		return nil, translateDB(err)
	}
	attachStatus(regs)
	return regs, nil
}

func (s *RegistrationService) ListByTournamentAndStatus(ctx context.Context, tournamentID string, status models.TeamStatus) ([]models.Registration, error) {
	if !status.Valid() {
		return nil, apperrors.ErrInvalidInput
	}
	var regs []models.Registration
	err := s.DB.WithContext(ctx).
		Joins("JOIN tournament_teams tt ON tt.id = registrations.tournament_team_id").
		Where("registrations.tournament_id = ? AND tt.status = ?", tournamentID, status).
		Preload("TournamentTeam").
		Preload("Team.Players").
		Order("registrations.registered_at DESC").
		Find(&regs).Error
	if err != nil {
		return nil, translateDB(err)
	}
	attachStatus(regs)
	return regs, nil
}

// ListByCaptain returns the registrations the given user captains.
func (s *RegistrationService) ListByCaptain(ctx context.Context, captainID string) ([]models.Registration, error) {
	var regs []models.Registration
	err := s.DB.WithContext(ctx).
		Preload("TournamentTeam").
		Preload("Team.Players").
		Where("captain_id = ?", captainID).
		Order("registered_at DESC").
		Find(&regs).Error
	if err != nil {
		return nil, translateDB(err)
	}
	attachStatus(regs)
	return regs, nil
}

// ListByPlayer returns the registrations whose roster includes the user.
func (s *RegistrationService) ListByPlayer(ctx context.Context, playerID string) ([]models.Registration, error) {
	var regs []models.Registration
	err := s.DB.WithContext(ctx).
		Joins("JOIN team_players tp ON tp.team_id = registrations.team_id").
		Where("tp.user_id = ?", playerID).
		Preload("TournamentTeam").
		Preload("Team.Players").
		Order("registrations.registered_at DESC").
		Find(&regs).Error
	if err != nil {
		return nil, translateDB(err)
	}
	attachStatus(regs)
	return regs, nil
}

// loadGuarded fetches the registration snapshot and applies the
// captain-or-admin policy. Non-admins get ErrForbidden whether the
// registration is missing or simply not theirs, so a probe cannot tell the
// difference; admins see ErrNotFound.
func (s *RegistrationService) loadGuarded(tx *gorm.DB, p auth.Principal, registrationID string) (*models.Registration, error) {
	r, err := loadRegistration(tx, registrationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) && !auth.IsAdmin(p) {
			return nil, apperrors.ErrForbidden
		}
		return nil, err
	}
	if !auth.IsTeamCaptainOrAdmin(p, *r) {
		return nil, apperrors.ErrForbidden
	}
	return r, nil
}

func loadRegistration(tx *gorm.DB, registrationID string) (*models.Registration, error) {
	var reg models.Registration
	err := tx.
		Preload("TournamentTeam").
		Preload("Team.Players").
		First(&reg, "id = ?", registrationID).Error
	if err != nil {
		return nil, translateDB(err)
	}
	reg.Status = reg.TournamentTeam.Status
	return &reg, nil
}

func attachStatus(regs []models.Registration) {
	for i := range regs {
		regs[i].Status = regs[i].TournamentTeam.Status
	}
}
