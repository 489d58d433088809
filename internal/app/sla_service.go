package app

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"snapfind/internal/common"
	"snapfind/internal/domain/notification"
	"snapfind/internal/domain/sla"
	"snapfind/internal/domain/user"
	"snapfind/internal/observability"

	jobdomain "snapfind/internal/domain/job"
)

// SLAService scans time-in-stage against per-company thresholds. It is a
// read-only batch over the ledger; it never moves candidates.
type SLAService struct {
	repo     sla.Repository
	jobs     jobdomain.Repository
	users    user.Repository
	notifier notification.Notifier
	logger   *observability.Logger

	defaultDays int
	marginDays  int
	now         func() time.Time
}

func NewSLAService(repo sla.Repository, jobs jobdomain.Repository, users user.Repository, notifier notification.Notifier, logger *observability.Logger, defaultDays, marginDays int) *SLAService {
	return &SLAService{
		repo:        repo,
		jobs:        jobs,
		users:       users,
		notifier:    notifier,
		logger:      logger,
		defaultDays: defaultDays,
		marginDays:  marginDays,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *SLAService) SetThreshold(ctx context.Context, companyID common.UUID, stageName string, days int) (*sla.Threshold, error) {
	stageName = strings.TrimSpace(stageName)
	if stageName == "" {
		return nil, common.NewValidationError("invalid threshold", map[string]string{"stageName": "stage name is required"})
	}
	if days <= 0 {
		return nil, common.NewValidationError("invalid threshold", map[string]string{"days": "days must be positive"})
	}
	return s.repo.CreateThreshold(ctx, sla.Threshold{CompanyID: companyID, StageName: stageName, Days: days})
}

func (s *SLAService) ListThresholds(ctx context.Context, companyID common.UUID) ([]sla.Threshold, error) {
	return s.repo.ListThresholds(ctx, companyID)
}

// CheckBreaches compares each active enrollment's days in stage against the
// configured threshold for that stage name. Stages without a threshold are
// skipped. Results are sorted by most overdue first. Breaches fan out as
// notifications to the job's recruiter and the company's admins and hiring
// managers; notification failures are logged, never fatal.
func (s *SLAService) CheckBreaches(ctx context.Context, companyID common.UUID) ([]sla.BreachAlert, error) {
	thresholds, err := s.repo.ListThresholds(ctx, companyID)
	if err != nil {
		return nil, err
	}
	byStage := make(map[string]int, len(thresholds))
	for _, t := range thresholds {
		byStage[strings.ToLower(t.StageName)] = t.Days
	}

	occupancies, err := s.repo.ListOccupancies(ctx, companyID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var breaches []sla.BreachAlert
	for _, occ := range occupancies {
		limit, ok := byStage[strings.ToLower(occ.StageName)]
		if !ok {
			continue
		}
		daysInStage := now.Sub(occ.EnteredAt).Hours() / 24
		if daysInStage <= float64(limit) {
			continue
		}
		breaches = append(breaches, sla.BreachAlert{
			Occupancy:     occ,
			ThresholdDays: limit,
			DaysInStage:   daysInStage,
			DaysOverdue:   int(math.Floor(daysInStage - float64(limit))),
		})
	}
	sort.SliceStable(breaches, func(i, j int) bool { return breaches[i].DaysOverdue > breaches[j].DaysOverdue })

	if len(breaches) > 0 {
		s.notifyBreaches(ctx, companyID, breaches)
	}
	return breaches, nil
}

// Sweep runs CheckBreaches for every company with open jobs. Used by the
// periodic background scan; per-company failures are logged and skipped.
func (s *SLAService) Sweep(ctx context.Context) {
	companies, err := s.repo.ListCompanyIDs(ctx)
	if err != nil {
		s.logger.Error(fmt.Sprintf("sla sweep: failed to list companies: %v", err))
		return
	}
	for _, companyID := range companies {
		if _, err := s.CheckBreaches(ctx, companyID); err != nil {
			s.logger.Error(fmt.Sprintf("sla sweep: company %s: %v", companyID, err))
		}
	}
}

func (s *SLAService) notifyBreaches(ctx context.Context, companyID common.UUID, breaches []sla.BreachAlert) {
	watchers, err := s.users.ListIDsByCompanyRoles(ctx, companyID, []user.Role{user.RoleAdmin, user.RoleHiringManager})
	if err != nil {
		s.logger.Error(fmt.Sprintf("sla fan-out: failed to resolve watchers for company %s: %v", companyID, err))
	}
	for _, breach := range breaches {
		title := "Candidate exceeding stage SLA"
		message := fmt.Sprintf("Candidate has spent %d day(s) over the %d-day limit in stage %q", breach.DaysOverdue, breach.ThresholdDays, breach.StageName)
		recipients := append([]common.UUID{breach.RecruiterID}, watchers...)
		seen := make(map[common.UUID]bool, len(recipients))
		for _, userID := range recipients {
			if userID.IsZero() || seen[userID] {
				continue
			}
			seen[userID] = true
			if err := s.notifier.CreateNotification(ctx, userID, notification.TypeSLABreach, title, message, breach.EnrollmentID.String()); err != nil {
				s.logger.Error(fmt.Sprintf("sla fan-out: failed to notify user %s: %v", userID, err))
			}
		}
	}
}

// JobHealth is the coarse job-level classification, derived from job age
// against the default threshold rather than per-candidate stage thresholds.
func (s *SLAService) JobHealth(ctx context.Context, jobID common.UUID) (sla.JobHealth, error) {
	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return "", err
	}
	ageDays := s.now().Sub(j.CreatedAt).Hours() / 24
	return sla.ClassifyAge(ageDays, s.defaultDays, s.marginDays), nil
}
