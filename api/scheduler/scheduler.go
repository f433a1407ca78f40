package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/caseworks/appraisal-case-api/api"
	"github.com/caseworks/appraisal-case-api/config"
	"github.com/caseworks/appraisal-case-api/databases"
	"github.com/caseworks/appraisal-case-api/engine"
	"github.com/caseworks/appraisal-case-api/models"
	templates "github.com/caseworks/appraisal-case-api/templates/html"
)

// markerMaxAge is how stale the session-tier timestamp marker may get before
// the refresh job rewrites every tier. Well under the session TTL so an idle
// case never expires out of the primary tier.
const markerMaxAge = time.Hour

// Scheduler handles the periodic background jobs: keeping the session tiers
// and durable mirror fresh, folding in externally written snapshots, and
// mailing the hourly protection alert digest.
type Scheduler struct {
	cron        *cron.Cron
	Store       *engine.Store
	Coordinator *databases.Coordinator
	Conf        *config.Config

	digested int
}

// NewScheduler creates a new scheduler instance
func NewScheduler(store *engine.Store, coordinator *databases.Coordinator, conf *config.Config) *Scheduler {
	return &Scheduler{
		cron:        cron.New(cron.WithLocation(time.UTC)),
		Store:       store,
		Coordinator: coordinator,
		Conf:        conf,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Refresh the staleness marker and self-heal the lower tiers every 5 minutes
	_, err := s.cron.AddFunc("*/5 * * * *", s.refreshSnapshot)
	if err != nil {
		zap.S().Errorw("failed to register snapshot refresh job", "error", err)
	}

	// Fold in snapshots written by other instances every minute
	_, err = s.cron.AddFunc("* * * * *", s.reconcile)
	if err != nil {
		zap.S().Errorw("failed to register reconcile job", "error", err)
	}

	// Mail new protection alerts hourly
	_, err = s.cron.AddFunc("0 * * * *", s.sendAlertDigest)
	if err != nil {
		zap.S().Errorw("failed to register alert digest job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("case maintenance scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("case maintenance scheduler stopped")
}

// refreshSnapshot rewrites every storage tier when the staleness marker is
// missing or too old. A fresh marker means a recent merge already wrote all
// tiers and there is nothing to do.
func (s *Scheduler) refreshSnapshot() {
	ctx, cancel := api.WithQueryTimeout(nil)
	defer cancel()

	last, err := s.Coordinator.LastUpdated(ctx)
	if err == nil && time.Since(last) < markerMaxAge {
		return
	}
	if err != nil {
		zap.S().Debugw("staleness marker unreadable, rewriting tiers", "error", err)
	}

	doc := s.Store.Document()
	if err := s.Coordinator.Persist(ctx, doc); err != nil {
		zap.S().Errorw("snapshot refresh failed", "error", err)
		return
	}
	zap.S().Infow("refreshed storage tiers", "version", doc.Version())
}

// reconcile pulls the persisted snapshot back through the merge pipeline in
// case another writer advanced it.
func (s *Scheduler) reconcile() {
	ctx, cancel := api.WithQueryTimeout(nil)
	defer cancel()

	if err := s.Store.Reconcile(ctx); err != nil {
		zap.S().Errorw("reconcile failed", "error", err)
	}
}

// sendAlertDigest mails the protection alerts recorded since the previous
// digest. Delivery is best effort; the trail itself stays on the document.
func (s *Scheduler) sendAlertDigest() {
	if s.Conf.SendgridAPIKey == "" || s.Conf.AlertEmailTo == "" {
		return
	}

	alerts := s.Store.Alerts()
	if len(alerts) <= s.digested {
		return
	}
	fresh := alerts[s.digested:]

	doc := s.Store.Document()
	caseID := doc.GetString(models.PathCaseID)
	if caseID == "" {
		caseID = s.Conf.CaseKey
	}

	subject := "Protection Alert Digest - Caseworks Appraisal"
	htmlContent := templates.RenderAlertDigestEmail(caseID, fresh)
	plainText := "Locked case fields rejected conflicting values. See the alert trail for details."

	if err := s.sendEmail(s.Conf.AlertEmailTo, subject, htmlContent, plainText); err != nil {
		zap.S().Errorw("failed to send alert digest", "error", err, "alerts", len(fresh))
		return
	}

	s.digested = len(alerts)
	zap.S().Infow("sent protection alert digest", "alerts", len(fresh), "caseId", caseID)
}

func (s *Scheduler) sendEmail(toEmail, subject, htmlContent, plainText string) error {
	from := mail.NewEmail("Caseworks Appraisal", s.Conf.AlertEmailFrom)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
	client := sendgrid.NewSendClient(s.Conf.SendgridAPIKey)
	response, err := client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body)
	}
	return nil
}
