package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/service/worker"
	"github.com/secmon-lab/moirai/pkg/usecase"
	"github.com/secmon-lab/moirai/pkg/utils/async"
	"github.com/secmon-lab/moirai/pkg/utils/logging"
)

// reportRange reads start and end, defaulting to the previous business
// week when both are absent.
func (s *Server) reportRange(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	if q.Get("start") == "" && q.Get("end") == "" {
		start, end := worker.PreviousBusinessWeek(s.now())
		return start, end, nil
	}
	return parseRange(r)
}

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	start, end, err := s.reportRange(r)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	id := teamID(r)

	if r.URL.Query().Get("async") == "true" {
		if _, err := s.uc.Admin.GetTeam(r.Context(), id); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		async.Dispatch(r.Context(), s.reportTimeout, func(ctx context.Context) error {
			report, err := s.uc.Report.GenerateReport(ctx, id, start, end)
			if err != nil {
				return goerr.Wrap(err, "failed to generate report", goerr.V(usecase.TeamIDKey, id))
			}
			logging.From(ctx).Info("report generated", "report_id", report.ID, "team_id", id)
			return nil
		})
		writeMessage(r.Context(), w, http.StatusAccepted, "report generation started")
		return
	}

	report, err := s.uc.Report.GenerateReport(r.Context(), id, start, end)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusCreated, report)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit := usecase.DefaultReportListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			handleError(r.Context(), w, goerr.Wrap(usecase.ErrInvalidInput, "invalid limit", goerr.V("limit", v)))
			return
		}
		limit = n
	}

	reports, err := s.uc.Report.ListReports(r.Context(), teamID(r), limit)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, reports)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.uc.Report.GetReport(r.Context(), model.ReportID(chi.URLParam(r, "reportID")))
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, report)
}
