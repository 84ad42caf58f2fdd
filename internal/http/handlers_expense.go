package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"smartspend/internal/core"
	"smartspend/internal/log"
	"smartspend/internal/services"
)

// streamHeartbeat keeps idle event streams open through proxies.
const streamHeartbeat = 25 * time.Second

type expenseResponse struct {
	Expense core.Expense      `json:"expense"`
	Message *services.Message `json:"message,omitempty"`
}

type todayResponse struct {
	TotalAmount   float64 `json:"totalAmount"`
	ExpenseCount  int     `json:"expenseCount"`
	AverageAmount float64 `json:"averageAmount"`
	Text          string  `json:"text"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	form, err := ParseEntryForm(r)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	e, msg, err := s.entries.Submit(r.Context(), form)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	resp := expenseResponse{Expense: e, Message: &msg}
	w.Header().Set("Location", "/expenses/"+e.ID)
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q, err := ParseListQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	view, err := s.lists.List(r.Context(), q)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.entries.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	form, err := ParseEntryForm(r)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	e, msg, err := s.entries.Update(r.Context(), r.PathValue("id"), form)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	resp := expenseResponse{Expense: e, Message: &msg}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if _, err := s.entries.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	sum, err := s.entries.TodaySummary(r.Context())
	if err != nil {
		writeError(w, r, log.OpCompute, err)
		return
	}
	writeJSON(w, http.StatusOK, todayResponse{
		TotalAmount:   sum.TotalAmount,
		ExpenseCount:  sum.ExpenseCount,
		AverageAmount: sum.Average(),
		Text:          sum.Text(),
	})
}

// handleStream sends the full expense list as a server-sent event now and
// after every change until the client goes away.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	updates, err := s.repo.Observe(ctx)
	if err != nil {
		writeError(w, r, log.OpObserve, err)
		return
	}

	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Streaming not supported", log.FieldError, err)
		return
	}

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case res, ok := <-updates:
			if !ok {
				return
			}
			if !res.OK() {
				fmt.Fprintf(w, "event: error\ndata: %q\n\n", res.Err.Error())
				_ = rc.Flush()
				continue
			}
			data, err := json.Marshal(res.Data)
			if err != nil {
				log.FromContext(ctx).ErrorContext(ctx, "Encode stream snapshot", log.FieldError, err)
				return
			}
			if _, err := fmt.Fprintf(w, "event: expenses\ndata: %s\n\n", data); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
