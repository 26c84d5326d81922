package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/domain/types"
)

type holidayRequest struct {
	Name     string   `json:"name"`
	Date     string   `json:"date"`
	Location string   `json:"location"`
	Hours    *float64 `json:"hours,omitempty"`
}

type leaveRequest struct {
	MemberID string  `json:"memberId"`
	Start    string  `json:"start"`
	End      string  `json:"end"`
	Duration float64 `json:"duration"`
	Status   string  `json:"status,omitempty"`
	Reason   string  `json:"reason,omitempty"`
}

func (s *Server) handleListHolidays(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}

	holidays, err := s.uc.Admin.ListHolidays(r.Context(), start, end, r.URL.Query().Get("location"))
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, holidays)
}

func (s *Server) handleCreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req holidayRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(r.Context(), w, err)
		return
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}

	holiday, err := s.uc.Admin.CreateHoliday(r.Context(), &model.Holiday{
		Name:     req.Name,
		Date:     date,
		Location: req.Location,
		Hours:    req.Hours,
	})
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusCreated, holiday)
}

func (s *Server) handleDeleteHoliday(w http.ResponseWriter, r *http.Request) {
	id := model.HolidayID(chi.URLParam(r, "holidayID"))
	if err := s.uc.Admin.DeleteHoliday(r.Context(), id); err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeMessage(r.Context(), w, http.StatusOK, "holiday deleted")
}

func (s *Server) handleListLeaves(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}

	leaves, err := s.uc.Admin.ListLeaves(r.Context(), start, end)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, leaves)
}

func (s *Server) handleCreateLeave(w http.ResponseWriter, r *http.Request) {
	var req leaveRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(r.Context(), w, err)
		return
	}
	start, err := parseDate("start", req.Start)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	end, err := parseDate("end", req.End)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}

	leave, err := s.uc.Admin.CreateLeave(r.Context(), &model.Leave{
		MemberID: types.MemberID(req.MemberID),
		Start:    start,
		End:      end,
		Duration: req.Duration,
		Status:   types.LeaveStatus(req.Status),
		Reason:   req.Reason,
	})
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusCreated, leave)
}

func (s *Server) handleApproveLeave(w http.ResponseWriter, r *http.Request) {
	s.decideLeave(w, r, s.uc.Admin.ApproveLeave)
}

func (s *Server) handleRejectLeave(w http.ResponseWriter, r *http.Request) {
	s.decideLeave(w, r, s.uc.Admin.RejectLeave)
}

type leaveDecision func(ctx context.Context, id model.LeaveID) (*model.Leave, error)

func (s *Server) decideLeave(w http.ResponseWriter, r *http.Request, decide leaveDecision) {
	leave, err := decide(r.Context(), model.LeaveID(chi.URLParam(r, "leaveID")))
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, leave)
}

func (s *Server) handleDeleteLeave(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.Admin.DeleteLeave(r.Context(), model.LeaveID(chi.URLParam(r, "leaveID"))); err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeMessage(r.Context(), w, http.StatusOK, "leave deleted")
}

// handleWorkingHours serves the working hours of a window for a location
// and optionally a member
func (s *Server) handleWorkingHours(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}

	q := r.URL.Query()
	breakdown, err := s.uc.Calendar.Breakdown(r.Context(), start, end, q.Get("location"), types.MemberID(q.Get("member")))
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, breakdown)
}

