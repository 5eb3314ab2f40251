package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"cafeprep/internal/core"
	"cafeprep/internal/export"
	"cafeprep/internal/log"
)

type resultView struct {
	Class    string
	Title    string
	Entry    *core.Entry
	Problems []string
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	s.renderWith(w, r, NewHTMXResponse().Status(status), name, data)
}

// renderWith executes a template into b's body. Rendering failures replace
// the response with a 500.
func (s *Server) renderWith(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder, name string, data any) {
	if s.templates == nil {
		InternalServerError("Templates not loaded").Write(w)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err,
			log.FieldOperation, log.OpRender,
			"template", name)
		InternalServerError("Failed to render page").Write(w)
		return
	}
	b.HTML(buf.Bytes()).Write(w)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "index.html", struct {
		CafeName string
		Today    string
		Products []string
	}{
		CafeName: s.cafeName,
		Today:    core.Today(),
		Products: s.catalog.Products(),
	})
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.logger.WarnContext(r.Context(), "Parse form error", log.FieldError, err)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	form, err := decodeEntryForm(r.PostForm)
	var problems []string
	var ferr *formError
	switch {
	case errors.As(err, &ferr):
		problems = ferr.Problems
	case err != nil:
		problems = []string{err.Error()}
	}
	if form.Item != "" && !s.catalog.Contains(form.Item) {
		problems = append(problems, "item "+form.Item+" is not on the product list")
	}
	if len(problems) > 0 {
		s.render(w, r, http.StatusUnprocessableEntity, "entry_result.html", resultView{
			Class:    "error",
			Title:    "Entry not saved",
			Problems: problems,
		})
		return
	}

	e := form.entry()
	out, err := s.entries.Record(r.Context(), e)
	if err != nil {
		status := http.StatusInternalServerError
		title := "Failed to save entry"
		if errors.Is(err, core.ErrInvalidEntry) {
			status = http.StatusUnprocessableEntity
			title = "Entry not saved"
		}
		s.render(w, r, status, "entry_result.html", resultView{
			Class:    "error",
			Title:    title,
			Problems: []string{err.Error()},
		})
		return
	}

	view := resultView{Class: "success", Title: "Saved and notification sent!", Entry: &e}
	if !out.Notified {
		view.Title = "Saved!"
	}
	if out.LoadErr != nil {
		view.Problems = append(view.Problems, "Failed to load data to compute the day's totals: "+out.LoadErr.Error())
	}
	if out.NotifyErr != nil {
		view.Problems = append(view.Problems, "Notification failed to send: "+out.NotifyErr.Error())
	}
	if len(view.Problems) > 0 {
		view.Class = "warning"
		view.Title = "Saved, with problems"
	}

	b := NewHTMXResponse().TriggerEntryRecorded(e.Date)
	if out.Complete() {
		b.TriggerFormReset()
	}
	s.renderWith(w, r, b, "entry_result.html", view)
}

func (s *Server) withReadTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.readTimeout)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withReadTimeout(r.Context())
	defer cancel()

	data := struct {
		Rows  []core.DateItemTotals
		Error string
	}{}
	rows, err := s.entries.Summary(ctx)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Summary load failed", log.FieldError, err, log.FieldOperation, log.OpSummary)
		data.Error = "Failed to load data: " + err.Error()
	}
	data.Rows = rows
	s.render(w, r, http.StatusOK, "summary.html", data)
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = core.Today()
	}

	ctx, cancel := s.withReadTimeout(r.Context())
	defer cancel()

	data := struct {
		Date  string
		Rows  []core.ItemTotals
		Total core.ItemTotals
		Error string
	}{Date: date}

	rows, total, err := s.entries.Daily(ctx, date)
	status := http.StatusOK
	switch {
	case errors.Is(err, core.ErrInvalidEntry):
		status = http.StatusBadRequest
		data.Error = "Invalid date " + date
	case err != nil:
		s.logger.ErrorContext(r.Context(), "Daily totals load failed", log.FieldError, err, log.FieldOperation, log.OpDaily, log.FieldDate, date)
		data.Error = "Failed to load data: " + err.Error()
	}
	data.Rows, data.Total = rows, total
	s.render(w, r, status, "daily.html", data)
}

func (s *Server) handleExportSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withReadTimeout(r.Context())
	defer cancel()

	rows, err := s.entries.Summary(ctx)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Export load failed", log.FieldError, err, log.FieldOperation, log.OpExport)
		InternalServerError("Failed to load data").Write(w)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteSummary(&buf, rows); err != nil {
		s.logger.ErrorContext(r.Context(), "Export failed", log.FieldError, err, log.FieldOperation, log.OpExport)
		InternalServerError("Failed to build workbook").Write(w)
		return
	}

	NewHTMXResponse().
		Attachment("cafeprep-summary-"+core.Today()+".xlsx", export.ContentType, buf.Bytes()).
		Write(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports ready only when templates are loaded and the store answers a full load.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withReadTimeout(r.Context())
	defer cancel()

	status := "ready"
	code := http.StatusOK
	checks := map[string]any{}

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if rows, err := s.entries.Summary(ctx); err != nil {
		checks["store"] = "failed: " + err.Error()
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["store"] = map[string]any{"status": "ok", "summary_rows": len(rows)}
	}

	checks["rate_limiter"] = map[string]any{"active_clients": s.rateLimiter.ActiveClients()}
	checks["security"] = map[string]any{"suspicious_requests": s.securityDetector.GetMetrics().SuspiciousRequests}
	checks["requests"] = map[string]any{"total": s.traceMiddleware.GetMetrics().TotalRequests}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}
