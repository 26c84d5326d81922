package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/moirai/pkg/usecase"
)

const DefaultReportTimeout = 5 * time.Minute

type Server struct {
	router        *chi.Mux
	uc            *usecase.UseCases
	reportTimeout time.Duration
	now           func() time.Time
}

type Options func(*Server)

// WithReportTimeout bounds reports generated in the background
func WithReportTimeout(d time.Duration) Options {
	return func(s *Server) {
		s.reportTimeout = d
	}
}

func WithClock(now func() time.Time) Options {
	return func(s *Server) {
		s.now = now
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:        r,
		uc:            uc,
		reportTimeout: DefaultReportTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.SetHeader("Cache-Control", "no-store"))

		r.Get("/health", s.handleHealth)

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", s.handleListTeams)
			r.Post("/", s.handlePutTeam)

			r.Route("/{teamID}", func(r chi.Router) {
				r.Get("/", s.handleGetTeam)
				r.Delete("/", s.handleDeleteTeam)
				r.Get("/capacity", s.handleTeamCapacity)
				r.Get("/members/{memberID}/capacity", s.handleMemberCapacity)
				r.Get("/issues", s.handleTeamIssues)
				r.Get("/analytics", s.handleTeamAnalytics)
				r.Get("/summary", s.handleTeamSummary)
				r.Get("/export.xlsx", s.handleExport)
				r.Post("/reports", s.handleGenerateReport)
				r.Get("/reports", s.handleListReports)
				r.Get("/query", s.handleGetQuery)
				r.Put("/query", s.handlePutQuery)
				r.Delete("/query", s.handleDeleteQuery)
			})
		})

		r.Get("/reports/{reportID}", s.handleGetReport)

		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", s.handleListHolidays)
			r.Post("/", s.handleCreateHoliday)
			r.Delete("/{holidayID}", s.handleDeleteHoliday)
		})

		r.Route("/leaves", func(r chi.Router) {
			r.Get("/", s.handleListLeaves)
			r.Post("/", s.handleCreateLeave)
			r.Post("/{leaveID}/approve", s.handleApproveLeave)
			r.Post("/{leaveID}/reject", s.handleRejectLeave)
			r.Delete("/{leaveID}", s.handleDeleteLeave)
		})

		r.Get("/calendar/working-hours", s.handleWorkingHours)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeData(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}
