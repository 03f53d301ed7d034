// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"

	"basketball-tournament-api/models"
)

// StartStatusScheduler runs the date-driven tournament transitions: once the
// start date passes an UPCOMING tournament goes ONGOING (which closes
// registration), and once the end date passes an ONGOING tournament goes
// COMPLETED (which completes its approved teams). Both reuse the same
// transactional transition path as the admin endpoint.
func (s *TournamentService) StartStatusScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			s.advanceDueTournaments(time.Now())
		}),
	)
}

func (s *TournamentService) advanceDueTournaments(now time.Time) {
	var starting []models.Tournament
	err := s.DB.Where("status = ? AND date <= ?", models.TournamentUpcoming, now).
		Find(&starting).Error
	if err != nil {
		log.Printf("[Scheduler] DB error: %v", err)
		return
	}
	for _, t := range starting {
		t := t
		err := s.DB.Transaction(func(tx *gorm.DB) error {
			return transitionTournament(tx, &t, models.TournamentOngoing)
		})
		if err != nil {
			log.Printf("[Scheduler] failed to start tournament %s: %v", t.ID, err)
		} else {
			log.Printf("[Scheduler] tournament started: %s", t.Name)
		}
	}

	var ending []models.Tournament
	err = s.DB.Where("status = ? AND end_date IS NOT NULL AND end_date <= ?", models.TournamentOngoing, now).
		Find(&ending).Error
	if err != nil {
		log.Printf("[Scheduler] DB error: %v", err)
		return
	}
	for _, t := range ending {
		t := t
		err := s.DB.Transaction(func(tx *gorm.DB) error {
			return transitionTournament(tx, &t, models.TournamentCompleted)
		})
		if err != nil {
			log.Printf("[Scheduler] failed to complete tournament %s: %v", t.ID, err)
		} else {
			log.Printf("[Scheduler] tournament completed: %s", t.Name)
		}
	}
}
