package services

import (
	"context"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"basketball-tournament-api/apperrors"
	"basketball-tournament-api/auth"
	"basketball-tournament-api/models"
	"basketball-tournament-api/utils"
	"basketball-tournament-api/workflow"
)

// TournamentService manages the admin-owned tournament lifecycle:
// UPCOMING -> ONGOING -> COMPLETED, with CANCELLED reachable from any
// non-terminal state. Completing a tournament propagates COMPLETED to its
// approved teams in the same transaction.
type TournamentService struct {
	DB *gorm.DB
}

func NewTournamentService(db *gorm.DB) *TournamentService {
	return &TournamentService{DB: db}
}

// TournamentInput carries the admin-editable fields.
type TournamentInput struct {
	Name             string     `json:"name"`
	Date             time.Time  `json:"date"`
	EndDate          *time.Time `json:"end_date,omitempty"`
	Location         string     `json:"location"`
	Description      string     `json:"description"`
	Rules            string     `json:"rules"`
	Level            string     `json:"level"`
	MaxTeams         int        `json:"max_teams"`
	EntryFee         float64    `json:"entry_fee"`
	PrizePool        string     `json:"prize_pool"`
	SponsorName      string     `json:"sponsor_name"`
	RegistrationOpen *bool      `json:"registration_open,omitempty"`
}

// Create makes a new UPCOMING tournament with registration open by default.
func (s *TournamentService) Create(ctx context.Context, p auth.Principal, in TournamentInput) (*models.Tournament, error) {
	if !auth.IsAdmin(p) {
		return nil, apperrors.ErrForbidden
	}
	if in.Name == "" || in.Date.IsZero() {
		return nil, apperrors.ErrInvalidInput
	}

	registrationOpen := true
	if in.RegistrationOpen != nil {
		registrationOpen = *in.RegistrationOpen
	}
	t := models.Tournament{
		ID:               uuid.NewString(),
		Name:             in.Name,
		Slug:             slug.Make(in.Name),
		Date:             in.Date,
		EndDate:          in.EndDate,
		Location:         in.Location,
		Description:      in.Description,
		Rules:            in.Rules,
		Level:            in.Level,
		Status:           models.TournamentUpcoming,
		RegistrationOpen: registrationOpen,
		MaxTeams:         in.MaxTeams,
		EntryFee:         in.EntryFee,
		PrizePool:        in.PrizePool,
		SponsorName:      in.SponsorName,
	}
	if err := s.DB.WithContext(ctx).Create(&t).Error; err != nil {
		return nil, translateDB(err)
	}
	return &t, nil
}

// Update replaces the editable tournament fields with the request body:
// omitted text fields clear and an omitted max_teams resets to unlimited.
// Name, Date, EndDate and RegistrationOpen keep their current value when
// absent (a tournament cannot be unnamed or undated, and zeroing them by
// accident would break slugs and scheduling). Status is not editable here;
// use UpdateStatus so the state machine stays in charge.
func (s *TournamentService) Update(ctx context.Context, p auth.Principal, id string, in TournamentInput) (*models.Tournament, error) {
	if !auth.IsAdmin(p) {
		return nil, apperrors.ErrForbidden
	}

	var t models.Tournament
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&t, "id = ?", id).Error; err != nil {
			return translateDB(err)
		}
		updates := map[string]any{
			"location":     in.Location,
			"description":  in.Description,
			"rules":        in.Rules,
			"level":        in.Level,
			"max_teams":    in.MaxTeams,
			"entry_fee":    in.EntryFee,
			"prize_pool":   in.PrizePool,
			"sponsor_name": in.SponsorName,
		}
		if in.Name != "" {
			updates["name"] = in.Name
			updates["slug"] = slug.Make(in.Name)
		}
		if !in.Date.IsZero() {
			updates["date"] = in.Date
		}
		if in.EndDate != nil {
			updates["end_date"] = in.EndDate
		}
		if in.RegistrationOpen != nil {
			updates["registration_open"] = *in.RegistrationOpen
		}
		if err := tx.Model(&t).Updates(updates).Error; err != nil {
			return translateDB(err)
		}
		return translateDB(tx.First(&t, "id = ?", id).Error)
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateStatus applies a tournament state transition. Admin only.
func (s *TournamentService) UpdateStatus(ctx context.Context, p auth.Principal, id string, newStatus models.TournamentStatus) (*models.Tournament, error) {
	if !auth.IsAdmin(p) {
		return nil, apperrors.ErrForbidden
	}

	var t models.Tournament
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&t, "id = ?", id).Error; err != nil {
			return translateDB(err)
		}
		return transitionTournament(tx, &t, newStatus)
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// transitionTournament performs the validated move inside tx and keeps the
// dependent state consistent: leaving UPCOMING closes registration, and
// COMPLETED marks every APPROVED team COMPLETED. The scheduler reuses this
// same path.
func transitionTournament(tx *gorm.DB, t *models.Tournament, newStatus models.TournamentStatus) error {
	if err := workflow.TransitionTournament(t.Status, newStatus); err != nil {
		return err
	}
	if t.Status == newStatus {
		return nil
	}

	updates := map[string]any{"status": newStatus}
	if newStatus != models.TournamentUpcoming {
		updates["registration_open"] = false
	}
	if err := tx.Model(&models.Tournament{}).Where("id = ?", t.ID).Updates(updates).Error; err != nil {
		return translateDB(err)
	}

	if newStatus == models.TournamentCompleted {
		if err := tx.Model(&models.TournamentTeam{}).
			Where("tournament_id = ? AND status = ?", t.ID, models.TeamApproved).
			Update("status", models.TeamCompleted).Error; err != nil {
			return translateDB(err)
		}
	}

	t.Status = newStatus
	if newStatus != models.TournamentUpcoming {
		t.RegistrationOpen = false
	}
	return nil
}

// SetResults records final placements for a finished tournament. Position 1
// bumps the winning team's tournaments_won, guarded so re-submitting the
// same placements never double-counts.
func (s *TournamentService) SetResults(ctx context.Context, p auth.Principal, tournamentID string, positions map[string]int) (*models.Tournament, error) {
	if !auth.IsAdmin(p) {
		return nil, apperrors.ErrForbidden
	}

	var t models.Tournament
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&t, "id = ?", tournamentID).Error; err != nil {
			return translateDB(err)
		}
		if t.Status != models.TournamentCompleted {
			return apperrors.ErrInvalidStateTransition
		}

		for teamID, pos := range positions {
			var tt models.TournamentTeam
			if err := tx.First(&tt, "tournament_id = ? AND team_id = ?", tournamentID, teamID).Error; err != nil {
				return translateDB(err)
			}
			if tt.Status != models.TeamCompleted {
				return apperrors.ErrInvalidStateTransition
			}

			wasWinner := tt.Position != nil && *tt.Position == 1
			if err := tx.Model(&tt).Update("position", pos).Error; err != nil {
				return translateDB(err)
			}
			if pos == 1 && !wasWinner {
				if err := tx.Model(&models.Team{}).
					Where("id = ?", teamID).
					UpdateColumn("tournaments_won", gorm.Expr("tournaments_won + ?", 1)).Error; err != nil {
					return translateDB(err)
				}
			}
			if pos != 1 && wasWinner {
				if err := tx.Model(&models.Team{}).
					Where("id = ?", teamID).
					UpdateColumn("tournaments_won", gorm.Expr("tournaments_won - ?", 1)).Error; err != nil {
					return translateDB(err)
				}
			}
		}
		return translateDB(tx.Preload("Teams.Team").First(&t, "id = ?", tournamentID).Error)
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByID returns a tournament with its teams and a registered-team count.
func (s *TournamentService) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	var t models.Tournament
	err := s.DB.WithContext(ctx).
		Preload("Teams.Team").
		First(&t, "id = ?", id).Error
	if err != nil {
		return nil, translateDB(err)
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.TournamentTeam{}).
		Where("tournament_id = ? AND status IN ?", id,
			[]models.TeamStatus{models.TeamPending, models.TeamApproved}).
		Count(&count).Error; err != nil {
		return nil, translateDB(err)
	}
	t.RegisteredTeams = count
	return &t, nil
}

// List returns tournaments, optionally filtered by status, newest date first.
func (s *TournamentService) List(ctx context.Context, status models.TournamentStatus) ([]models.Tournament, error) {
	q := s.DB.WithContext(ctx).Order("date DESC")
	if status != "" {
		if !status.Valid() {
			return nil, apperrors.ErrInvalidInput
		}
		q = q.Where("status = ?", status)
	}
	var tournaments []models.Tournament
	if err := q.Find(&tournaments).Error; err != nil {
		return nil, translateDB(err)
	}
	return tournaments, nil
}

// Delete removes a tournament and everything hanging off it. Admin only.
func (s *TournamentService) Delete(ctx context.Context, p auth.Principal, id string) error {
	if !auth.IsAdmin(p) {
		return apperrors.ErrForbidden
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tournament_id = ?", id).Delete(&models.Registration{}).Error; err != nil {
			return translateDB(err)
		}
		if err := tx.Where("tournament_id = ?", id).Delete(&models.TournamentTeam{}).Error; err != nil {
			return translateDB(err)
		}
		result := tx.Delete(&models.Tournament{}, "id = ?", id)
		if result.Error != nil {
			return translateDB(result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}

// UploadImage stores the tournament image in R2 and saves the public URL.
func (s *TournamentService) UploadImage(ctx context.Context, p auth.Principal, id string, file *multipart.FileHeader) (*models.Tournament, error) {
	if !auth.IsAdmin(p) {
		return nil, apperrors.ErrForbidden
	}

	var t models.Tournament
	if err := s.DB.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translateDB(err)
	}

	ext := filepath.Ext(file.Filename)
	if ext == "" {
		ext = ".jpg"
	}
	key := "tournaments/" + uuid.NewString() + ext
	url, err := utils.UploadFileToR2(file, key)
	if err != nil {
		return nil, err
	}

	if err := s.DB.WithContext(ctx).Model(&t).Update("image_url", url).Error; err != nil {
		return nil, translateDB(err)
	}
	t.ImageURL = url
	return &t, nil
}
