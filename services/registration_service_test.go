package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"basketball-tournament-api/apperrors"
	"basketball-tournament-api/auth"
	"basketball-tournament-api/models"
)

type regFixture struct {
	db      *gorm.DB
	svc     *RegistrationService
	tour    models.Tournament
	admin   models.User
	captain models.User
	p1, p2  models.User
}

func newRegFixture(t *testing.T) *regFixture {
	db := setupTestDB(t)
	return &regFixture{
		db:      db,
		svc:     NewRegistrationService(db),
		tour:    seedTournament(t, db, models.TournamentUpcoming, true),
		admin:   seedUser(t, db, "admin", models.RoleAdmin),
		captain: seedUser(t, db, "captain", models.RoleUser),
		p1:      seedUser(t, db, "player-one", models.RoleUser),
		p2:      seedUser(t, db, "player-two", models.RoleUser),
	}
}

func (f *regFixture) register(t *testing.T, teamName string) *models.Registration {
	t.Helper()
	reg, err := f.svc.Register(context.Background(), principal(f.captain), f.tour.ID, teamName,
		[]string{f.p1.ID, f.p2.ID})
	require.NoError(t, err)
	return reg
}

func TestRegisterCreatesPendingEntry(t *testing.T) {
	f := newRegFixture(t)

	reg := f.register(t, "Hawks")
	assert.Equal(t, models.TeamPending, reg.Status)
	assert.Equal(t, f.captain.ID, reg.CaptainID)
	assert.Equal(t, "Hawks", reg.TeamName)
	assert.Len(t, reg.Team.Players, 3) // captain joined his own roster

	var tt models.TournamentTeam
	require.NoError(t, f.db.First(&tt, "id = ?", reg.TournamentTeamID).Error)
	assert.Equal(t, models.TeamPending, tt.Status)
	assert.Equal(t, f.tour.ID, tt.TournamentID)
	assert.Equal(t, reg.TeamID, tt.TeamID)
}

func TestRegisterRequiresAuthentication(t *testing.T) {
	f := newRegFixture(t)

	_, err := f.svc.Register(context.Background(), auth.Principal{}, f.tour.ID, "Hawks",
		[]string{f.p1.ID, f.p2.ID})
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestRegisterValidation(t *testing.T) {
	f := newRegFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, principal(f.captain), f.tour.ID, "Hawks", []string{f.p1.ID})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPlayers)

	_, err = f.svc.Register(ctx, principal(f.captain), f.tour.ID, "AB", []string{f.p1.ID, f.p2.ID})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTeamName)

	_, err = f.svc.Register(ctx, principal(f.captain), f.tour.ID, "Hawks",
		[]string{f.p1.ID, "no-such-user"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.svc.Register(ctx, principal(f.captain), "no-such-tournament", "Hawks",
		[]string{f.p1.ID, f.p2.ID})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, f.db.Model(&models.Tournament{}).
		Where("id = ?", f.tour.ID).Update("registration_open", false).Error)
	_, err = f.svc.Register(ctx, principal(f.captain), f.tour.ID, "Hawks",
		[]string{f.p1.ID, f.p2.ID})
	assert.ErrorIs(t, err, apperrors.ErrRegistrationClosed)
}

func TestRegisterDuplicateTeamNameRollsBack(t *testing.T) {
	f := newRegFixture(t)
	f.register(t, "Hawks")

	rival := seedUser(t, f.db, "rival-captain", models.RoleUser)
	_, err := f.svc.Register(context.Background(), principal(rival), f.tour.ID, "Hawks",
		[]string{f.p1.ID, f.p2.ID})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateTeamName)

	// The losing attempt leaves nothing behind.
	var regs, teams, tts int64
	require.NoError(t, f.db.Model(&models.Registration{}).Count(&regs).Error)
	require.NoError(t, f.db.Model(&models.Team{}).Count(&teams).Error)
	require.NoError(t, f.db.Model(&models.TournamentTeam{}).Count(&tts).Error)
	assert.EqualValues(t, 1, regs)
	assert.EqualValues(t, 1, teams)
	assert.EqualValues(t, 1, tts)
}

func TestRegisterSameNameDifferentTournament(t *testing.T) {
	f := newRegFixture(t)
	f.register(t, "Hawks")

	other := seedTournament(t, f.db, models.TournamentUpcoming, true)
	_, err := f.svc.Register(context.Background(), principal(f.captain), other.ID, "Hawks",
		[]string{f.p1.ID, f.p2.ID})
	assert.NoError(t, err)
}

func TestRegisterCapacity(t *testing.T) {
	f := newRegFixture(t)
	require.NoError(t, f.db.Model(&models.Tournament{}).
		Where("id = ?", f.tour.ID).Update("max_teams", 1).Error)

	reg := f.register(t, "Hawks")

	rival := seedUser(t, f.db, "rival-captain", models.RoleUser)
	_, err := f.svc.Register(context.Background(), principal(rival), f.tour.ID, "Eagles",
		[]string{f.p1.ID, f.p2.ID})
	assert.ErrorIs(t, err, apperrors.ErrTournamentFull)

	// A rejection frees the slot: only PENDING and APPROVED count.
	_, err = f.svc.UpdateStatus(context.Background(), principal(f.admin), reg.ID, models.TeamRejected)
	require.NoError(t, err)
	_, err = f.svc.Register(context.Background(), principal(rival), f.tour.ID, "Eagles",
		[]string{f.p1.ID, f.p2.ID})
	assert.NoError(t, err)
}

func TestUpdateStatusApproval(t *testing.T) {
	f := newRegFixture(t)
	reg := f.register(t, "Hawks")
	ctx := context.Background()

	played := func() int {
		var team models.Team
		require.NoError(t, f.db.First(&team, "id = ?", reg.TeamID).Error)
		return team.TournamentsPlayed
	}

	approved, err := f.svc.UpdateStatus(ctx, principal(f.admin), reg.ID, models.TeamApproved)
	require.NoError(t, err)
	assert.Equal(t, models.TeamApproved, approved.Status)
	assert.Equal(t, 1, played())

	// Re-approving is a no-op and never counts twice.
	_, err = f.svc.UpdateStatus(ctx, principal(f.admin), reg.ID, models.TeamApproved)
	require.NoError(t, err)
	assert.Equal(t, 1, played())

	// APPROVED cannot be rejected.
	_, err = f.svc.UpdateStatus(ctx, principal(f.admin), reg.ID, models.TeamRejected)
	assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition)
}

func TestUpdateStatusRejectionDoesNotCount(t *testing.T) {
	f := newRegFixture(t)
	reg := f.register(t, "Hawks")

	_, err := f.svc.UpdateStatus(context.Background(), principal(f.admin), reg.ID, models.TeamRejected)
	require.NoError(t, err)

	var team models.Team
	require.NoError(t, f.db.First(&team, "id = ?", reg.TeamID).Error)
	assert.Equal(t, 0, team.TournamentsPlayed)
}

func TestUpdateStatusAdminOnly(t *testing.T) {
	f := newRegFixture(t)
	reg := f.register(t, "Hawks")
	ctx := context.Background()

	// The captain cannot approve their own team, and the refused call must
	// leave the status untouched.
	_, err := f.svc.UpdateStatus(ctx, principal(f.captain), reg.ID, models.TeamApproved)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	var tt models.TournamentTeam
	require.NoError(t, f.db.First(&tt, "id = ?", reg.TournamentTeamID).Error)
	assert.Equal(t, models.TeamPending, tt.Status)

	// Non-admins get the same refusal for a missing id; admins get not-found.
	_, err = f.svc.UpdateStatus(ctx, principal(f.captain), "no-such-reg", models.TeamApproved)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = f.svc.UpdateStatus(ctx, principal(f.admin), "no-such-reg", models.TeamApproved)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAddPlayer(t *testing.T) {
	f := newRegFixture(t)
	reg := f.register(t, "Hawks")
	ctx := context.Background()
	extra := seedUser(t, f.db, "substitute", models.RoleUser)

	// The returned roster must list every member exactly once.
	distinct := func(players []models.User) {
		t.Helper()
		seen := make(map[string]bool, len(players))
		for _, member := range players {
			assert.False(t, seen[member.ID], "player %s listed twice", member.Name)
			seen[member.ID] = true
		}
	}

	out, err := f.svc.AddPlayer(ctx, principal(f.captain), reg.ID, extra.ID)
	require.NoError(t, err)
	assert.Len(t, out.Team.Players, 4)
	distinct(out.Team.Players)

	// Adding an existing member changes nothing.
	out, err = f.svc.AddPlayer(ctx, principal(f.captain), reg.ID, extra.ID)
	require.NoError(t, err)
	assert.Len(t, out.Team.Players, 4)
	distinct(out.Team.Players)

	var joinRows int64
	require.NoError(t, f.db.Table("team_players").
		Where("team_id = ?", reg.TeamID).Count(&joinRows).Error)
	assert.EqualValues(t, 4, joinRows)

	// Unknown player id.
	_, err = f.svc.AddPlayer(ctx, principal(f.admin), reg.ID, "no-such-user")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// A random user cannot touch someone else's roster, and cannot probe
	// whether a registration exists.
	stranger := seedUser(t, f.db, "stranger", models.RoleUser)
	_, err = f.svc.AddPlayer(ctx, principal(stranger), reg.ID, extra.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = f.svc.AddPlayer(ctx, principal(stranger), "no-such-reg", extra.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestRemovePlayer(t *testing.T) {
	f := newRegFixture(t)
	reg := f.register(t, "Hawks")
	ctx := context.Background()

	out, err := f.svc.RemovePlayer(ctx, principal(f.captain), reg.ID, f.p2.ID)
	require.NoError(t, err)
	assert.Len(t, out.Team.Players, 2)

	_, err = f.svc.RemovePlayer(ctx, principal(f.captain), reg.ID, f.captain.ID)
	assert.ErrorIs(t, err, apperrors.ErrCannotRemoveCaptain)

	// Admins are bound by the same captain rule.
	_, err = f.svc.RemovePlayer(ctx, principal(f.admin), reg.ID, f.captain.ID)
	assert.ErrorIs(t, err, apperrors.ErrCannotRemoveCaptain)
}

func TestDeleteRegistration(t *testing.T) {
	f := newRegFixture(t)
	reg := f.register(t, "Hawks")
	ctx := context.Background()

	stranger := seedUser(t, f.db, "stranger", models.RoleUser)
	err := f.svc.Delete(ctx, principal(stranger), reg.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	require.NoError(t, f.svc.Delete(ctx, principal(f.captain), reg.ID))

	var regs, teams, tts int64
	require.NoError(t, f.db.Model(&models.Registration{}).Count(&regs).Error)
	require.NoError(t, f.db.Model(&models.Team{}).Count(&teams).Error)
	require.NoError(t, f.db.Model(&models.TournamentTeam{}).Count(&tts).Error)
	assert.Zero(t, regs)
	assert.Zero(t, teams)
	assert.Zero(t, tts)

	// The freed name is usable again.
	f.register(t, "Hawks")
}

func TestRegistrationReads(t *testing.T) {
	f := newRegFixture(t)
	reg := f.register(t, "Hawks")
	ctx := context.Background()

	rival := seedUser(t, f.db, "rival-captain", models.RoleUser)
	reg2, err := f.svc.Register(ctx, principal(rival), f.tour.ID, "Eagles",
		[]string{f.p1.ID, f.p2.ID})
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, principal(f.admin), reg2.ID, models.TeamApproved)
	require.NoError(t, err)

	got, err := f.svc.GetByID(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TeamPending, got.Status)

	byTournament, err := f.svc.ListByTournament(ctx, f.tour.ID)
	require.NoError(t, err)
	assert.Len(t, byTournament, 2)

	approved, err := f.svc.ListByTournamentAndStatus(ctx, f.tour.ID, models.TeamApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, "Eagles", approved[0].TeamName)
	assert.Equal(t, models.TeamApproved, approved[0].Status)

	_, err = f.svc.ListByTournamentAndStatus(ctx, f.tour.ID, models.TeamStatus("WAITLISTED"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	byCaptain, err := f.svc.ListByCaptain(ctx, f.captain.ID)
	require.NoError(t, err)
	require.Len(t, byCaptain, 1)
	assert.Equal(t, "Hawks", byCaptain[0].TeamName)

	// p1 plays in both teams.
	byPlayer, err := f.svc.ListByPlayer(ctx, f.p1.ID)
	require.NoError(t, err)
	assert.Len(t, byPlayer, 2)

	_, err = f.svc.ListAll(ctx, principal(rival))
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	all, err := f.svc.ListAll(ctx, principal(f.admin))
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
