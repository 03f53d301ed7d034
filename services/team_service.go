package services

import (
	"context"
	"errors"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"basketball-tournament-api/apperrors"
	"basketball-tournament-api/auth"
	"basketball-tournament-api/models"
	"basketball-tournament-api/utils"
)

// TeamService covers team reads and the non-workflow bits of team
// management (logo upload, leaderboards). Mutations of a team's tournament
// participation always go through RegistrationService.
type TeamService struct {
	DB *gorm.DB
}

func NewTeamService(db *gorm.DB) *TeamService {
	return &TeamService{DB: db}
}

func (s *TeamService) GetByID(ctx context.Context, id string) (*models.Team, error) {
	var team models.Team
	err := s.DB.WithContext(ctx).Preload("Players").First(&team, "id = ?", id).Error
	if err != nil {
		return nil, translateDB(err)
	}
	return &team, nil
}

// Search finds teams by name fragment, case-insensitive.
func (s *TeamService) Search(ctx context.Context, name string, limit int) ([]models.Team, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	q := s.DB.WithContext(ctx).Limit(limit).Order("name ASC")
	if name != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(name))+"%")
	}
	var teams []models.Team
	if err := q.Find(&teams).Error; err != nil {
		return nil, translateDB(err)
	}
	return teams, nil
}

// TopTeams ranks by tournaments won, then played.
func (s *TeamService) TopTeams(ctx context.Context, limit int) ([]models.Team, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	var teams []models.Team
	err := s.DB.WithContext(ctx).
		Order("tournaments_won DESC").
		Order("tournaments_played DESC").
		Limit(limit).
		Find(&teams).Error
	if err != nil {
		return nil, translateDB(err)
	}
	return teams, nil
}

// ListByTournament returns the participation records for a tournament,
// optionally filtered by status. Missing tournaments are reported, matching
// the read-side contract (reads are not existence-hardened).
func (s *TeamService) ListByTournament(ctx context.Context, tournamentID string, status models.TeamStatus) ([]models.TournamentTeam, error) {
	var exists int64
	if err := s.DB.WithContext(ctx).Model(&models.Tournament{}).
		Where("id = ?", tournamentID).Count(&exists).Error; err != nil {
		return nil, translateDB(err)
	}
	if exists == 0 {
		return nil, apperrors.ErrNotFound
	}

	q := s.DB.WithContext(ctx).
		Preload("Team.Players").
		Where("tournament_id = ?", tournamentID).
		Order("registered_at ASC")
	if status != "" {
		if !status.Valid() {
			return nil, apperrors.ErrInvalidInput
		}
		q = q.Where("status = ?", status)
	}
	var teams []models.TournamentTeam
	if err := q.Find(&teams).Error; err != nil {
		return nil, translateDB(err)
	}
	return teams, nil
}

// UploadLogo stores a team logo in R2. Allowed for admins and for captains
// of any registration this team belongs to; everyone else is refused
// without revealing whether the team exists.
func (s *TeamService) UploadLogo(ctx context.Context, p auth.Principal, teamID string, file *multipart.FileHeader) (*models.Team, error) {
	var team models.Team
	if err := s.DB.WithContext(ctx).First(&team, "id = ?", teamID).Error; err != nil {
		if errors.Is(translateDB(err), apperrors.ErrNotFound) && !auth.IsAdmin(p) {
			return nil, apperrors.ErrForbidden
		}
		return nil, translateDB(err)
	}

	if !auth.IsAdmin(p) {
		var reg models.Registration
		err := s.DB.WithContext(ctx).First(&reg, "team_id = ?", teamID).Error
		if err != nil || !auth.IsTeamCaptainOrAdmin(p, reg) {
			return nil, apperrors.ErrForbidden
		}
	}

	ext := filepath.Ext(file.Filename)
	if ext == "" {
		ext = ".png"
	}
	key := "teams/logos/" + uuid.NewString() + ext
	url, err := utils.UploadFileToR2(file, key)
	if err != nil {
		return nil, err
	}

	if err := s.DB.WithContext(ctx).Model(&team).Update("logo_url", url).Error; err != nil {
		return nil, translateDB(err)
	}
	team.LogoURL = url
	return &team, nil
}
