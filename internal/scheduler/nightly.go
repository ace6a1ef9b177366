package scheduler

import (
	"context"
	"errors"
	"log"
	"time"
	_ "time/tzdata" // distroless images ship without zoneinfo

	"alcyxob/fitness-coach/internal/config"
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/planner"
	"alcyxob/fitness-coach/internal/service"

	"github.com/robfig/cron"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultSpec = "0 0 3 * * *"

// perUserTimeout bounds one user's generation inside a nightly run.
const perUserTimeout = 3 * time.Minute

// ActiveUsers lists users that currently have an active goal.
type ActiveUsers interface {
	ListActiveUserIDs(ctx context.Context) ([]primitive.ObjectID, error)
}

// RunReport summarises one nightly pass.
type RunReport struct {
	Date      string
	Generated int
	Skipped   int
	Failed    int
}

// Nightly pre-generates tomorrow's plan for every user with an active goal.
type Nightly struct {
	users ActiveUsers
	coach service.CoachService
	loc   *time.Location
	now   func() time.Time
	cron  *cron.Cron
}

func NewNightly(users ActiveUsers, coach service.CoachService, loc *time.Location) *Nightly {
	if loc == nil {
		loc = time.UTC
	}
	return &Nightly{
		users: users,
		coach: coach,
		loc:   loc,
		now:   time.Now,
	}
}

// Start schedules RunOnce on spec (six fields, seconds first).
func (n *Nightly) Start(spec string) error {
	if spec == "" {
		spec = DefaultSpec
	}
	c := cron.NewWithLocation(n.loc)
	err := c.AddFunc(spec, func() {
		report, err := n.RunOnce(context.Background())
		if err != nil {
			log.Printf("ERROR: Nightly generation failed: %v", err)
			return
		}
		log.Printf("INFO: Nightly generation for %s: %d generated, %d skipped, %d failed",
			report.Date, report.Generated, report.Skipped, report.Failed)
	})
	if err != nil {
		return err
	}
	c.Start()
	n.cron = c
	log.Printf("INFO: Nightly plan generation scheduled (%s, %s)", spec, n.loc)
	return nil
}

func (n *Nightly) Stop() {
	if n.cron != nil {
		n.cron.Stop()
	}
}

// RunOnce generates tomorrow's plan for each active user. A user who already
// has a plan for that date counts as skipped; other failures are logged and
// do not stop the pass.
func (n *Nightly) RunOnce(ctx context.Context) (RunReport, error) {
	report := RunReport{Date: n.now().In(n.loc).AddDate(0, 0, 1).Format(domain.DateLayout)}

	userIDs, err := n.users.ListActiveUserIDs(ctx)
	if err != nil {
		return report, err
	}

	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		userCtx, cancel := context.WithTimeout(ctx, perUserTimeout)
		_, err := n.coach.GenerateDailyPlan(userCtx, userID, report.Date)
		cancel()

		switch {
		case err == nil:
			report.Generated++
		case errors.Is(err, planner.ErrDuplicateSession), errors.Is(err, planner.ErrNoActiveGoal):
			report.Skipped++
		default:
			report.Failed++
			log.Printf("WARN: Nightly generation for user %s on %s failed: %v", userID.Hex(), report.Date, err)
		}
	}
	return report, nil
}

// FromConfig builds a Nightly using the configured timezone.
func FromConfig(cfg config.SchedulerConfig, users ActiveUsers, coach service.CoachService) (*Nightly, error) {
	loc := time.UTC
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, err
		}
		loc = l
	}
	return NewNightly(users, coach, loc), nil
}
