package http

import (
	"fmt"
	"net/http"
	"strconv"

	"smartspend/internal/export"
	"smartspend/internal/log"
	"smartspend/internal/report"
	"smartspend/internal/services"
)

type weeklyResponse struct {
	Report   report.WeeklyReport  `json:"report"`
	Summary  report.WeeklySummary `json:"summary"`
	Text     string               `json:"text"`
	Insights []string             `json:"insights"`
}

type periodOption struct {
	Period report.Period `json:"period"`
	Label  string        `json:"label"`
}

func (s *Server) handlePeriods(w http.ResponseWriter, r *http.Request) {
	out := make([]periodOption, 0, len(report.Periods()))
	for _, p := range report.Periods() {
		out = append(out, periodOption{Period: p, Label: p.DisplayName()})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCompute returns analytics for an explicit period without a session.
func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	rr, err := ParseRangeRequest(r.URL.Query().Get)
	if err != nil {
		writeError(w, r, log.OpCompute, err)
		return
	}
	a, err := s.reports.Compute(r.Context(), rr.Period, rr.Start, rr.End)
	if err != nil {
		writeError(w, r, log.OpCompute, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	wr, sum, err := s.reports.Weekly(r.Context())
	if err != nil {
		writeError(w, r, log.OpCompute, err)
		return
	}
	writeJSON(w, http.StatusOK, weeklyResponse{Report: wr, Summary: sum, Text: sum.SummaryText(), Insights: sum.Insights()})
}

func (s *Server) handleWeeklySummary(w http.ResponseWriter, r *http.Request) {
	_, sum, err := s.reports.Weekly(r.Context())
	if err != nil {
		writeError(w, r, log.OpCompute, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		report.WeeklySummary
		Text     string   `json:"text"`
		Insights []string `json:"insights"`
	}{sum, sum.SummaryText(), sum.Insights()})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	period := report.Last7Days
	if raw := p.Get("period"); raw != "" {
		parsed, err := report.ParsePeriod(raw)
		if err != nil {
			writeError(w, r, log.OpCreate, err)
			return
		}
		period = parsed
	}
	view, err := s.reports.CreateSession(r.Context(), period)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	w.Header().Set("Location", "/reports/sessions/"+view.SessionID)
	writeJSON(w, http.StatusCreated, view)
}

// handleGetSession reloads the session; refresh=1 also clears dismissed
// insights.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	load := s.reports.Load
	if refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); refresh {
		load = s.reports.Refresh
	}
	view, err := load(r.Context(), id)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleChangeRange(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	rr, err := ParseRangeRequest(p.Get)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	id := r.PathValue("id")
	var view services.ReportView
	if rr.Period == report.Custom {
		view, err = s.reports.SetCustomRange(r.Context(), id, *rr.Start, *rr.End)
	} else {
		view, err = s.reports.ChangeRange(r.Context(), id, rr.Period)
	}
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDismissInsight(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	key := p.Get("key")
	if key == "" {
		writeError(w, r, log.OpUpdate, fmt.Errorf("%w: insight key is required", errBadRequest))
		return
	}
	view, err := s.reports.Dismiss(r.Context(), r.PathValue("id"), key)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleExport streams the rendered report as an attachment. The outcome
// message is shown on the session's next load.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = string(export.CSV)
	}
	t, err := export.ParseType(format)
	if err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}
	file, err := s.reports.Export(r.Context(), r.PathValue("id"), t)
	if err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}
