package app

import (
	"context"
	"sync"
	"time"

	"snapfind/internal/common"
	"snapfind/internal/domain/candidate"
	"snapfind/internal/domain/interview"
	"snapfind/internal/domain/notification"
	"snapfind/internal/domain/pipeline"
	"snapfind/internal/domain/settings"
	"snapfind/internal/domain/sla"
	"snapfind/internal/domain/user"

	jobdomain "snapfind/internal/domain/job"
)

// fakeLedger keeps enrollments, the stage history ledger, and activities in
// memory and applies transitions the way the SQL store does: close the open
// interval, repoint the enrollment, open the next interval, append the
// activity.
type fakeLedger struct {
	mu          sync.Mutex
	enrollments map[common.UUID]*candidate.Enrollment
	history     []*candidate.HistoryEntry
	activities  []candidate.Activity
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{enrollments: make(map[common.UUID]*candidate.Enrollment)}
}

func (l *fakeLedger) Create(ctx context.Context, e candidate.Enrollment) (*candidate.Enrollment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, existing := range l.enrollments {
		if existing.JobID == e.JobID && existing.CandidateID == e.CandidateID {
			return nil, common.NewError(common.CodeConflict, "candidate already applied to this job", nil)
		}
	}
	e.ID = common.NewUUID()
	if e.AppliedAt.IsZero() {
		e.AppliedAt = time.Now().UTC()
	}
	e.UpdatedAt = e.AppliedAt
	stored := e
	l.enrollments[e.ID] = &stored
	copy := stored
	return &copy, nil
}

func (l *fakeLedger) GetByID(ctx context.Context, id common.UUID) (*candidate.Enrollment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.enrollments[id]
	if e == nil {
		return nil, common.NewError(common.CodeNotFound, "enrollment not found", nil)
	}
	copy := *e
	return &copy, nil
}

func (l *fakeLedger) FindByJobAndCandidate(ctx context.Context, jobID, candidateID common.UUID) (*candidate.Enrollment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.enrollments {
		if e.JobID == jobID && e.CandidateID == candidateID {
			copy := *e
			return &copy, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "enrollment not found", nil)
}

func (l *fakeLedger) ListByJob(ctx context.Context, jobID common.UUID) ([]candidate.Enrollment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []candidate.Enrollment
	for _, e := range l.enrollments {
		if e.JobID == jobID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (l *fakeLedger) CountByStages(ctx context.Context, stageIDs []common.UUID) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	wanted := make(map[common.UUID]bool, len(stageIDs))
	for _, id := range stageIDs {
		wanted[id] = true
	}
	count := 0
	for _, e := range l.enrollments {
		if wanted[e.CurrentStageID] {
			count++
		}
	}
	return count, nil
}

func (l *fakeLedger) Open(ctx context.Context, entry candidate.HistoryEntry) (*candidate.HistoryEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.ID = common.NewUUID()
	stored := entry
	l.history = append(l.history, &stored)
	copy := stored
	return &copy, nil
}

func (l *fakeLedger) FindOpen(ctx context.Context, enrollmentID common.UUID) (*candidate.HistoryEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, entry := range l.history {
		if entry.EnrollmentID == enrollmentID && entry.ExitedAt == nil {
			copy := *entry
			return &copy, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "no open stage interval", nil)
}

func (l *fakeLedger) ListByEnrollment(ctx context.Context, enrollmentID common.UUID) ([]candidate.HistoryEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []candidate.HistoryEntry
	for _, entry := range l.history {
		if entry.EnrollmentID == enrollmentID {
			out = append(out, *entry)
		}
	}
	return out, nil
}

func (l *fakeLedger) CreateActivity(ctx context.Context, activity candidate.Activity) (*candidate.Activity, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.appendActivity(activity), nil
}

func (l *fakeLedger) appendActivity(activity candidate.Activity) *candidate.Activity {
	activity.ID = common.NewUUID()
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}
	l.activities = append(l.activities, activity)
	copy := activity
	return &copy
}

func (l *fakeLedger) ListByCandidate(ctx context.Context, candidateID common.UUID) ([]candidate.Activity, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []candidate.Activity
	for _, a := range l.activities {
		if a.CandidateID == candidateID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (l *fakeLedger) ApplyTransition(ctx context.Context, t candidate.Transition) (*candidate.Enrollment, *candidate.Activity, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.enrollments[t.EnrollmentID]
	if e == nil {
		return nil, nil, common.NewError(common.CodeNotFound, "enrollment not found", nil)
	}
	for _, entry := range l.history {
		if entry.EnrollmentID == t.EnrollmentID && entry.ExitedAt == nil {
			exitedAt := t.OccurredAt
			duration := exitedAt.Sub(entry.EnteredAt).Hours()
			entry.ExitedAt = &exitedAt
			entry.DurationHours = &duration
			break
		}
	}
	e.CurrentStageID = t.ToStageID
	e.UpdatedAt = t.OccurredAt
	opened := candidate.HistoryEntry{
		ID:           common.NewUUID(),
		EnrollmentID: t.EnrollmentID,
		StageID:      t.ToStageID,
		StageName:    t.ToStageName,
		EnteredAt:    t.OccurredAt,
		Comment:      t.Comment,
		MovedBy:      t.MovedBy,
	}
	l.history = append(l.history, &opened)
	activity := t.Activity
	activity.CreatedAt = t.OccurredAt
	stored := l.appendActivity(activity)
	enrollment := *e
	return &enrollment, stored, nil
}

// activityRepo adapts fakeLedger to the ActivityRepository interface, whose
// Create clashes with the enrollment Create.
type activityRepo struct{ ledger *fakeLedger }

func (r activityRepo) Create(ctx context.Context, activity candidate.Activity) (*candidate.Activity, error) {
	return r.ledger.CreateActivity(ctx, activity)
}

func (r activityRepo) ListByCandidate(ctx context.Context, candidateID common.UUID) ([]candidate.Activity, error) {
	return r.ledger.ListByCandidate(ctx, candidateID)
}

type fakeStageRepo struct {
	mu     sync.Mutex
	stages map[common.UUID]*pipeline.Stage
}

func newFakeStageRepo() *fakeStageRepo {
	return &fakeStageRepo{stages: make(map[common.UUID]*pipeline.Stage)}
}

func (r *fakeStageRepo) Create(ctx context.Context, stage pipeline.Stage) (*pipeline.Stage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stage.ID.IsZero() {
		stage.ID = common.NewUUID()
	}
	stage.Role = pipeline.NormalizeRole(stage.Role, stage.Name)
	stored := stage
	r.stages[stage.ID] = &stored
	copy := stored
	return &copy, nil
}

func (r *fakeStageRepo) GetByID(ctx context.Context, id common.UUID) (*pipeline.Stage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stage := r.stages[id]
	if stage == nil {
		return nil, common.NewError(common.CodeNotFound, "stage not found", nil)
	}
	copy := *stage
	return &copy, nil
}

func (r *fakeStageRepo) ListByJob(ctx context.Context, jobID common.UUID) ([]pipeline.Stage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []pipeline.Stage
	for _, stage := range r.stages {
		if stage.JobID == jobID {
			out = append(out, *stage)
		}
	}
	return out, nil
}

func (r *fakeStageRepo) UpdateName(ctx context.Context, id common.UUID, name string) (*pipeline.Stage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stage := r.stages[id]
	if stage == nil {
		return nil, common.NewError(common.CodeNotFound, "stage not found", nil)
	}
	stage.Name = name
	copy := *stage
	return &copy, nil
}

func (r *fakeStageRepo) UpdatePositions(ctx context.Context, positions map[common.UUID]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, position := range positions {
		stage := r.stages[id]
		if stage == nil {
			return common.NewError(common.CodeNotFound, "stage not found", nil)
		}
		stage.Position = position
	}
	return nil
}

func (r *fakeStageRepo) Delete(ctx context.Context, id common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stages[id] == nil {
		return common.NewError(common.CodeNotFound, "stage not found", nil)
	}
	for otherID, other := range r.stages {
		if other.ParentID != nil && *other.ParentID == id {
			delete(r.stages, otherID)
		}
	}
	delete(r.stages, id)
	return nil
}

type fakeTemplateRepo struct {
	mu        sync.Mutex
	templates map[common.UUID]*pipeline.Template
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: make(map[common.UUID]*pipeline.Template)}
}

func (r *fakeTemplateRepo) Create(ctx context.Context, template pipeline.Template) (*pipeline.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	template.ID = common.NewUUID()
	template.CreatedAt = time.Now().UTC()
	stored := template
	r.templates[template.ID] = &stored
	copy := stored
	return &copy, nil
}

func (r *fakeTemplateRepo) GetByID(ctx context.Context, id common.UUID) (*pipeline.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	template := r.templates[id]
	if template == nil {
		return nil, common.NewError(common.CodeNotFound, "template not found", nil)
	}
	copy := *template
	return &copy, nil
}

func (r *fakeTemplateRepo) ListByCompany(ctx context.Context, companyID common.UUID) ([]pipeline.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []pipeline.Template
	for _, template := range r.templates {
		if template.CompanyID == companyID {
			out = append(out, *template)
		}
	}
	return out, nil
}

func (r *fakeTemplateRepo) Update(ctx context.Context, template pipeline.Template) (*pipeline.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing := r.templates[template.ID]
	if existing == nil {
		return nil, common.NewError(common.CodeNotFound, "template not found", nil)
	}
	existing.Name = template.Name
	existing.Description = template.Description
	existing.Stages = template.Stages
	copy := *existing
	return &copy, nil
}

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[common.UUID]*jobdomain.Job
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[common.UUID]*jobdomain.Job)}
}

func (r *fakeJobRepo) Create(ctx context.Context, j jobdomain.Job) (*jobdomain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j.ID.IsZero() {
		j.ID = common.NewUUID()
	}
	if j.Status == "" {
		j.Status = jobdomain.StatusOpen
	}
	now := time.Now().UTC()
	j.CreatedAt = now
	j.UpdatedAt = now
	stored := j
	r.jobs[j.ID] = &stored
	copy := stored
	return &copy, nil
}

func (r *fakeJobRepo) GetByID(ctx context.Context, id common.UUID) (*jobdomain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j := r.jobs[id]
	if j == nil {
		return nil, common.NewError(common.CodeNotFound, "job not found", nil)
	}
	copy := *j
	return &copy, nil
}

func (r *fakeJobRepo) ListByCompany(ctx context.Context, companyID common.UUID) ([]jobdomain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []jobdomain.Job
	for _, j := range r.jobs {
		if j.CompanyID == companyID {
			out = append(out, *j)
		}
	}
	return out, nil
}

type fakeSLARepo struct {
	mu          sync.Mutex
	thresholds  []sla.Threshold
	occupancies []sla.Occupancy
}

func (r *fakeSLARepo) CreateThreshold(ctx context.Context, t sla.Threshold) (*sla.Threshold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.thresholds {
		if existing.CompanyID == t.CompanyID && existing.StageName == t.StageName {
			return nil, common.NewError(common.CodeConflict, "threshold already configured for this stage", nil)
		}
	}
	t.ID = common.NewUUID()
	t.CreatedAt = time.Now().UTC()
	r.thresholds = append(r.thresholds, t)
	return &t, nil
}

func (r *fakeSLARepo) ListThresholds(ctx context.Context, companyID common.UUID) ([]sla.Threshold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sla.Threshold
	for _, t := range r.thresholds {
		if t.CompanyID == companyID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeSLARepo) ListOccupancies(ctx context.Context, companyID common.UUID) ([]sla.Occupancy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sla.Occupancy(nil), r.occupancies...), nil
}

func (r *fakeSLARepo) ListCompanyIDs(ctx context.Context) ([]common.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[common.UUID]bool)
	var out []common.UUID
	for _, t := range r.thresholds {
		if !seen[t.CompanyID] {
			seen[t.CompanyID] = true
			out = append(out, t.CompanyID)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	byRole map[user.Role][]common.UUID
}

func (r *fakeUserRepo) ListIDsByCompanyRoles(ctx context.Context, companyID common.UUID, roles []user.Role) ([]common.UUID, error) {
	var out []common.UUID
	for _, role := range roles {
		out = append(out, r.byRole[role]...)
	}
	return out, nil
}

type fakeInterviewRepo struct {
	mu         sync.Mutex
	interviews map[common.UUID]*interview.Interview
	feedback   []interview.Feedback
}

func newFakeInterviewRepo() *fakeInterviewRepo {
	return &fakeInterviewRepo{interviews: make(map[common.UUID]*interview.Interview)}
}

func (r *fakeInterviewRepo) Create(ctx context.Context, iv interview.Interview) (*interview.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	iv.ID = common.NewUUID()
	if iv.ScheduledAt.IsZero() {
		iv.ScheduledAt = time.Now().UTC()
	}
	stored := iv
	r.interviews[iv.ID] = &stored
	copy := stored
	return &copy, nil
}

func (r *fakeInterviewRepo) GetByID(ctx context.Context, id common.UUID) (*interview.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	iv := r.interviews[id]
	if iv == nil {
		return nil, common.NewError(common.CodeNotFound, "interview not found", nil)
	}
	copy := *iv
	return &copy, nil
}

func (r *fakeInterviewRepo) CreateFeedback(ctx context.Context, f interview.Feedback) (*interview.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.feedback {
		if existing.InterviewID == f.InterviewID && existing.PanelistID == f.PanelistID {
			return nil, common.NewError(common.CodeConflict, "feedback already submitted for this interview", nil)
		}
	}
	f.ID = common.NewUUID()
	if f.SubmittedAt.IsZero() {
		f.SubmittedAt = time.Now().UTC()
	}
	r.feedback = append(r.feedback, f)
	return &f, nil
}

func (r *fakeInterviewRepo) ListFeedback(ctx context.Context, interviewID common.UUID) ([]interview.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []interview.Feedback
	for _, f := range r.feedback {
		if f.InterviewID == interviewID {
			out = append(out, f)
		}
	}
	return out, nil
}

type fakeSettingsRepo struct {
	settings map[common.UUID]*settings.CompanySettings
}

func (r *fakeSettingsRepo) GetByCompany(ctx context.Context, companyID common.UUID) (*settings.CompanySettings, error) {
	s := r.settings[companyID]
	if s == nil {
		return nil, common.NewError(common.CodeNotFound, "company settings not found", nil)
	}
	copy := *s
	return &copy, nil
}

type sentNotification struct {
	userID    common.UUID
	ntype     notification.Type
	title     string
	message   string
	entityRef string
}

type fakeNotifier struct {
	mu   sync.Mutex
	err  error
	sent []sentNotification
}

func (n *fakeNotifier) CreateNotification(ctx context.Context, userID common.UUID, ntype notification.Type, title, message, entityRef string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentNotification{userID: userID, ntype: ntype, title: title, message: message, entityRef: entityRef})
	return nil
}
