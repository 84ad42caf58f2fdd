package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"smartspend/internal/cache"
	"smartspend/internal/core"
	"smartspend/internal/export"
	"smartspend/internal/log"
	"smartspend/internal/report"
	"smartspend/internal/repository"
)

const MsgExportFailed = "Failed to export report"

var (
	ErrSessionNotFound = errors.New("report session not found")
	ErrInvalidRange    = errors.New("start date must not be after end date")
)

// Session is the per-viewer report state. It is replaced, never mutated,
// once stored.
type Session struct {
	ID          string
	Period      report.Period
	CustomStart *core.Day
	CustomEnd   *core.Day
	Dismissed   []string
	Message     *Message
}

// ReportView is one rendering of a session.
type ReportView struct {
	SessionID   string                   `json:"sessionId"`
	Status      Status                   `json:"status"`
	Period      report.Period            `json:"period"`
	PeriodLabel string                   `json:"periodLabel"`
	Analytics   report.Analytics         `json:"analytics"`
	Insights    []report.SpendingInsight `json:"insights"`
	Message     *Message                 `json:"message,omitempty"`
}

// ExportFile is a rendered export ready to send.
type ExportFile struct {
	Name        string
	ContentType string
	Type        export.ExportType
	Data        []byte
}

type ReportOptions struct {
	Thresholds report.Thresholds
	Boundary   report.TrendBoundary
}

type ReportService struct {
	repo     *repository.ExpenseRepository
	sessions cache.Cache[Session]
	exports  *export.Registry
	opts     ReportOptions
	logger   *log.Logger
}

func NewReportService(repo *repository.ExpenseRepository, sessions cache.Cache[Session], exports *export.Registry, opts ReportOptions, logger *log.Logger) *ReportService {
	if logger == nil {
		logger = log.Discard()
	}
	if exports == nil {
		exports = export.NewRegistry()
	}
	if opts.Thresholds == (report.Thresholds{}) {
		opts.Thresholds = report.DefaultThresholds()
	}
	return &ReportService{
		repo:     repo,
		sessions: sessions,
		exports:  exports,
		opts:     opts,
		logger:   logger.WithComponent(log.ComponentReport),
	}
}

// CreateSession starts a session on period (last 7 days when invalid).
func (s *ReportService) CreateSession(ctx context.Context, period report.Period) (ReportView, error) {
	if !period.IsValid() {
		period = report.Last7Days
	}
	sess := Session{ID: uuid.NewString(), Period: period}
	s.sessions.Set(sess.ID, sess)
	s.logger.DebugContext(ctx, "Report session created", log.FieldSessionID, sess.ID, log.FieldPeriod, period)
	return s.Load(ctx, sess.ID)
}

// Load recomputes the report from a fresh snapshot. Dismissed insights
// stay hidden and any pending message is delivered once.
func (s *ReportService) Load(ctx context.Context, id string) (ReportView, error) {
	var msg *Message
	sess, ok := s.sessions.Update(id, func(cur Session, ok bool) (Session, bool) {
		if !ok {
			return cur, false
		}
		msg = cur.Message
		cur.Message = nil
		return cur, true
	})
	if !ok {
		return ReportView{}, ErrSessionNotFound
	}

	a, err := s.compute(ctx, sess)
	if err != nil {
		return ReportView{SessionID: id, Status: StatusError}, err
	}
	view := ReportView{
		SessionID:   sess.ID,
		Status:      StatusReady,
		Period:      sess.Period,
		PeriodLabel: a.PeriodLabel,
		Analytics:   a,
		Insights:    visibleInsights(a.Insights, sess.Dismissed),
		Message:     msg,
	}
	if !a.HasData() {
		view.Status = StatusEmpty
	}
	return view, nil
}

// Refresh clears dismissals and recomputes.
func (s *ReportService) Refresh(ctx context.Context, id string) (ReportView, error) {
	if err := s.update(id, func(sess *Session) error {
		sess.Dismissed = nil
		return nil
	}); err != nil {
		return ReportView{}, err
	}
	return s.Load(ctx, id)
}

// ChangeRange selects a period. Custom bounds chosen earlier are kept so
// switching back to CUSTOM restores them.
func (s *ReportService) ChangeRange(ctx context.Context, id string, period report.Period) (ReportView, error) {
	if !period.IsValid() {
		return ReportView{}, report.ErrUnknownPeriod
	}
	if err := s.update(id, func(sess *Session) error {
		sess.Period = period
		sess.Dismissed = nil
		return nil
	}); err != nil {
		return ReportView{}, err
	}
	return s.Load(ctx, id)
}

// SetCustomRange selects CUSTOM with the given inclusive bounds.
func (s *ReportService) SetCustomRange(ctx context.Context, id string, start, end core.Day) (ReportView, error) {
	if start.After(end) {
		return ReportView{}, ErrInvalidRange
	}
	if err := s.update(id, func(sess *Session) error {
		sess.Period = report.Custom
		sess.CustomStart, sess.CustomEnd = &start, &end
		sess.Dismissed = nil
		return nil
	}); err != nil {
		return ReportView{}, err
	}
	return s.Load(ctx, id)
}

// Dismiss hides one insight, by key, from this session's view.
func (s *ReportService) Dismiss(ctx context.Context, id, key string) (ReportView, error) {
	if err := s.update(id, func(sess *Session) error {
		if !slices.Contains(sess.Dismissed, key) {
			sess.Dismissed = append(slices.Clone(sess.Dismissed), key)
		}
		return nil
	}); err != nil {
		return ReportView{}, err
	}
	return s.Load(ctx, id)
}

// Export renders the session's current report. The outcome message is
// queued for the next Load.
func (s *ReportService) Export(ctx context.Context, id string, t export.ExportType) (ExportFile, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return ExportFile{}, ErrSessionNotFound
	}
	exporter, err := s.exports.Get(t)
	if err != nil {
		s.setMessage(id, Message{Text: MsgExportFailed, Error: true})
		return ExportFile{}, err
	}
	a, err := s.compute(ctx, sess)
	if err != nil {
		s.setMessage(id, Message{Text: MsgExportFailed, Error: true})
		return ExportFile{}, err
	}

	var buf bytes.Buffer
	if err := exporter.Write(ctx, &buf, a); err != nil {
		s.logger.ErrorContext(ctx, "Report export failed",
			log.FieldSessionID, id, log.FieldExportType, t, log.FieldError, err)
		s.setMessage(id, Message{Text: MsgExportFailed, Error: true})
		return ExportFile{}, fmt.Errorf("export %s: %w", t, err)
	}
	s.setMessage(id, Message{Text: export.SuccessMessage(t)})
	s.logger.InfoContext(ctx, "Report exported",
		log.FieldSessionID, id, log.FieldExportType, t, "bytes", buf.Len())

	return ExportFile{
		Name:        export.FileName(a, exporter),
		ContentType: exporter.ContentType(),
		Type:        t,
		Data:        buf.Bytes(),
	}, nil
}

// Weekly returns the seven-day report and its summary.
func (s *ReportService) Weekly(ctx context.Context) (report.WeeklyReport, report.WeeklySummary, error) {
	w, err := s.repo.WeeklyReport(ctx)
	if err != nil {
		return report.WeeklyReport{}, report.WeeklySummary{}, err
	}
	return w, report.Summarize(w), nil
}

// Compute builds analytics for an explicit period, outside any session.
func (s *ReportService) Compute(ctx context.Context, period report.Period, start, end *core.Day) (report.Analytics, error) {
	return s.compute(ctx, Session{Period: period, CustomStart: start, CustomEnd: end})
}

func (s *ReportService) compute(ctx context.Context, sess Session) (report.Analytics, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return report.Analytics{}, fmt.Errorf("load expenses: %w", err)
	}
	t := s.opts.Thresholds
	return report.Compute(all, report.Options{
		Period:      sess.Period,
		CustomStart: sess.CustomStart,
		CustomEnd:   sess.CustomEnd,
		Now:         s.repo.Now(),
		Location:    s.repo.Location(),
		Thresholds:  &t,
		Boundary:    s.opts.Boundary,
	}), nil
}

func (s *ReportService) update(id string, fn func(*Session) error) error {
	var fnErr error
	_, ok := s.sessions.Update(id, func(cur Session, ok bool) (Session, bool) {
		if !ok {
			return cur, false
		}
		if fnErr = fn(&cur); fnErr != nil {
			return cur, false
		}
		return cur, true
	})
	if fnErr != nil {
		return fnErr
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

func (s *ReportService) setMessage(id string, m Message) {
	_ = s.update(id, func(sess *Session) error {
		sess.Message = &m
		return nil
	})
}

func visibleInsights(all []report.SpendingInsight, dismissed []string) []report.SpendingInsight {
	out := make([]report.SpendingInsight, 0, len(all))
	for _, in := range all {
		if !slices.Contains(dismissed, in.Key()) {
			out = append(out, in)
		}
	}
	return out
}
