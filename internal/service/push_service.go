package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/udfnd/credittalk-admin-sub000/internal/model"
	"github.com/udfnd/credittalk-admin-sub000/pkg/gateway"
)

// JobLedger persists dispatch jobs. Satisfied by repository.PushJobRepository.
type JobLedger interface {
	Create(ctx context.Context, job *model.PushJob) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PushJob, error)
	Claim(ctx context.Context, id uuid.UUID) (bool, error)
	Complete(ctx context.Context, id uuid.UUID, result model.DispatchResult) error
	Fail(ctx context.Context, id uuid.UUID, errSummary string) error
	FindDue(ctx context.Context, now time.Time, limit int) ([]model.PushJob, error)
	ListRecent(ctx context.Context, limit int) ([]model.PushJob, error)
}

// TokenHygiene deactivates dead device registrations. Satisfied by
// repository.DeviceTokenRepository.
type TokenHygiene interface {
	DisableTokens(ctx context.Context, tokens []string) error
}

// UserDirectory maps internal numeric user ids to device-addressable auth
// ids. Satisfied by repository.UserRepository.
type UserDirectory interface {
	AuthIDForAppUser(ctx context.Context, appUserID int64) (uuid.UUID, bool, error)
}

// ClientSource hands out the authenticated gateway client. Satisfied by
// *gateway.ClientCache.
type ClientSource interface {
	Client(ctx context.Context) (gateway.Messenger, error)
}

// PushService drives the dispatch pipeline:
// resolve → build → dispatch → hygiene → ledger.
type PushService struct {
	ledger     JobLedger
	resolver   *Resolver
	dispatcher *Dispatcher
	hygiene    TokenHygiene
	users      UserDirectory
	clients    ClientSource
}

func NewPushService(
	ledger JobLedger,
	resolver *Resolver,
	dispatcher *Dispatcher,
	hygiene TokenHygiene,
	users UserDirectory,
	clients ClientSource,
) *PushService {
	return &PushService{
		ledger:     ledger,
		resolver:   resolver,
		dispatcher: dispatcher,
		hygiene:    hygiene,
		users:      users,
		clients:    clients,
	}
}

// Enqueue creates a job from an admin request. A future scheduled_at queues
// it for the scheduled runner; otherwise the pipeline runs synchronously
// and the returned row carries the final status and result. A job that ran
// with sent=0 is still a successful enqueue.
func (s *PushService) Enqueue(ctx context.Context, createdBy *uuid.UUID, req model.SendNotificationRequest) (*model.PushJob, error) {
	job := jobFromRequest(createdBy, req)

	scheduled := req.ScheduledAt != nil && req.ScheduledAt.After(time.Now())
	if scheduled {
		job.Status = model.JobStatusQueued
	} else {
		job.Status = model.JobStatusProcessing
	}

	if err := s.ledger.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("%w: create: %v", ErrLedger, err)
	}

	if scheduled {
		return job, nil
	}
	s.runJob(ctx, job)
	return job, nil
}

// NotifyTarget is the single-purpose shorthand: resolve the addressee
// (explicit auth id, numeric app user id, or entity owner) to an explicit
// target list, then run the normal immediate pipeline. An unresolvable
// target yields a zero-target job, not an error.
func (s *PushService) NotifyTarget(ctx context.Context, createdBy *uuid.UUID, req model.NotifyTargetRequest) (*model.PushJob, error) {
	var targets []uuid.UUID
	switch {
	case req.Target.AuthUserID != nil:
		targets = []uuid.UUID{*req.Target.AuthUserID}
	case req.Target.AppUserID != nil:
		authID, found, err := s.users.AuthIDForAppUser(ctx, *req.Target.AppUserID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResolution, err)
		}
		if found {
			targets = []uuid.UUID{authID}
		}
	case req.Target.Reference != nil:
		owner, found, err := s.resolver.OwnerFor(ctx, *req.Target.Reference)
		if err != nil {
			return nil, err
		}
		if found {
			targets = []uuid.UUID{owner}
		}
	}

	return s.Enqueue(ctx, createdBy, model.SendNotificationRequest{
		Title:         req.Title,
		Body:          req.Body,
		Data:          req.Data,
		TargetUserIDs: targets,
	})
}

// ListRecentJobs returns the newest ledger rows for dashboards.
func (s *PushService) ListRecentJobs(ctx context.Context, limit int) ([]model.PushJob, error) {
	return s.ledger.ListRecent(ctx, limit)
}

// GetJob fetches one ledger row.
func (s *PushService) GetJob(ctx context.Context, id uuid.UUID) (*model.PushJob, error) {
	return s.ledger.FindByID(ctx, id)
}

// RunDue executes one scheduled-runner poll cycle: claim up to the limit of
// due queued jobs and drive each through the pipeline sequentially. One
// job's failure never aborts the rest of the cycle.
func (s *PushService) RunDue(ctx context.Context, limit int) error {
	jobs, err := s.ledger.FindDue(ctx, time.Now(), limit)
	if err != nil {
		return fmt.Errorf("%w: find due: %v", ErrLedger, err)
	}

	for i := range jobs {
		job := &jobs[i]
		claimed, err := s.ledger.Claim(ctx, job.ID)
		if err != nil {
			log.Printf("🚨 Ledger claim failed for job %s: %v", job.ID, err)
			continue
		}
		if !claimed {
			// Lost the race or already terminal; never dispatch twice.
			continue
		}
		job.Status = model.JobStatusProcessing
		s.runJob(ctx, job)
	}
	return nil
}

// runJob executes the pipeline for a job already in processing. Stage
// failures (credentials, resolution) terminate the job as failed; per-token
// send failures only shape the result.
func (s *PushService) runJob(ctx context.Context, job *model.PushJob) {
	client, err := s.clients.Client(ctx)
	if err != nil && !job.DryRun {
		s.markFailed(ctx, job, err)
		return
	}

	tokens, err := s.resolver.Resolve(ctx, addressingFor(job))
	if err != nil {
		s.markFailed(ctx, job, err)
		return
	}

	params := BuildParams{
		Title:      job.Title,
		Body:       job.Body,
		Data:       job.Data,
		ImageURL:   imageURLFrom(job.Data),
		CollapseID: uuid.NewString(),
	}

	outcome := s.dispatcher.DispatchAll(ctx, client, tokens, params, job.DryRun)

	// Hygiene runs whenever the dispatch attempt ran, whatever the counts.
	if len(outcome.DeadTokens) > 0 {
		if err := s.hygiene.DisableTokens(ctx, outcome.DeadTokens); err != nil {
			log.Printf("🚨 Failed to disable %d dead tokens: %v", len(outcome.DeadTokens), err)
		} else {
			log.Printf("🧹 Disabled %d dead device tokens", len(outcome.DeadTokens))
		}
	}

	result := model.DispatchResult{
		DryRun:         job.DryRun,
		Total:          len(tokens),
		Sent:           outcome.Sent,
		Failed:         outcome.Failed,
		DisabledTokens: len(outcome.DeadTokens),
	}

	if err := s.ledger.Complete(ctx, job.ID, result); err != nil {
		// The most serious failure mode: the job may be stuck in
		// processing with no automatic reconciliation.
		log.Printf("🚨 Ledger complete failed for job %s: %v", job.ID, err)
		return
	}
	job.Status = model.JobStatusDone
	job.Result = result.AsMap()
}

func (s *PushService) markFailed(ctx context.Context, job *model.PushJob, cause error) {
	if err := s.ledger.Fail(ctx, job.ID, cause.Error()); err != nil {
		log.Printf("🚨 Ledger fail-write failed for job %s: %v (original: %v)", job.ID, err, cause)
		return
	}
	job.Status = model.JobStatusFailed
	job.Result = model.JSONMap{"error": cause.Error()}
}

func jobFromRequest(createdBy *uuid.UUID, req model.SendNotificationRequest) *model.PushJob {
	data := model.JSONMap{}
	for k, v := range req.Data {
		data[k] = v
	}
	if req.ImageURL != "" {
		data["image_url"] = req.ImageURL
	}

	job := &model.PushJob{
		CreatedBy:   createdBy,
		Title:       req.Title,
		Body:        req.Body,
		Data:        data,
		DryRun:      req.DryRun,
		ScheduledAt: req.ScheduledAt,
	}
	if req.AudienceAll {
		job.Audience = model.JSONMap{"all": true}
	}
	for _, id := range req.TargetUserIDs {
		job.TargetUserIDs = append(job.TargetUserIDs, id.String())
	}
	return job
}

func addressingFor(job *model.PushJob) Addressing {
	var addr Addressing
	for _, raw := range job.TargetUserIDs {
		if id, err := uuid.Parse(raw); err == nil {
			addr.ExplicitUserIDs = append(addr.ExplicitUserIDs, id)
		}
	}
	addr.All = job.AudienceAll()
	return addr
}

func imageURLFrom(data model.JSONMap) string {
	if data == nil {
		return ""
	}
	if url, ok := data["image_url"].(string); ok {
		return url
	}
	return ""
}
