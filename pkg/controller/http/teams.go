package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/domain/types"
	"github.com/secmon-lab/moirai/pkg/service/export"
	"github.com/secmon-lab/moirai/pkg/utils/safe"
)

type memberRequest struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Designation       string `json:"designation"`
	ExternalAccountID string `json:"externalAccountId"`
	Location          string `json:"location"`
}

type teamRequest struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Location string          `json:"location"`
	Members  []memberRequest `json:"members"`
}

func (req *teamRequest) toModel() *model.Team {
	team := &model.Team{
		ID:       types.TeamID(req.ID),
		Name:     req.Name,
		Location: req.Location,
		Members:  make([]model.Member, len(req.Members)),
	}
	for i, m := range req.Members {
		team.Members[i] = model.Member{
			ID:                types.MemberID(m.ID),
			Name:              m.Name,
			Email:             m.Email,
			Designation:       m.Designation,
			ExternalAccountID: m.ExternalAccountID,
			Location:          m.Location,
		}
	}
	return team
}

func teamID(r *http.Request) types.TeamID {
	return types.TeamID(chi.URLParam(r, "teamID"))
}

func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := s.uc.Admin.ListTeams(r.Context())
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, teams)
}

func (s *Server) handlePutTeam(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(r.Context(), w, err)
		return
	}

	team, err := s.uc.Admin.PutTeam(r.Context(), req.toModel())
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, team)
}

func (s *Server) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	team, err := s.uc.Admin.GetTeam(r.Context(), teamID(r))
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, team)
}

func (s *Server) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.Admin.DeleteTeam(r.Context(), teamID(r)); err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeMessage(r.Context(), w, http.StatusOK, "team deleted")
}

func (s *Server) handleTeamCapacity(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}

	capacity, err := s.uc.Analytics.TeamCapacity(r.Context(), teamID(r), start, end)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, capacity)
}

func (s *Server) handleMemberCapacity(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}

	memberID := types.MemberID(chi.URLParam(r, "memberID"))
	capacity, err := s.uc.Analytics.MemberCapacity(r.Context(), teamID(r), memberID, start, end)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, capacity)
}

func (s *Server) handleTeamIssues(w http.ResponseWriter, r *http.Request) {
	order, err := types.ParseIssueSortOrder(r.URL.Query().Get("sort"))
	if err != nil {
		handleError(r.Context(), w, badRequest(err.Error()))
		return
	}

	issues, err := s.uc.Analytics.TeamIssues(r.Context(), teamID(r), order)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, issues)
}

func (s *Server) handleTeamAnalytics(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}

	analytics, err := s.uc.Analytics.TeamAnalytics(r.Context(), teamID(r), start, end)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, analytics)
}

func (s *Server) handleTeamSummary(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}

	analytics, err := s.uc.Analytics.TeamAnalytics(r.Context(), teamID(r), start, end)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, analytics.Summary)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}

	buf, name, err := s.uc.Analytics.ExportWorkbook(r.Context(), teamID(r), start, end)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	safe.Copy(r.Context(), w, buf)
}

type queryRequest struct {
	Name string `json:"name"`
	JQL  string `json:"jql"`
}

func (s *Server) handleGetQuery(w http.ResponseWriter, r *http.Request) {
	query, err := s.uc.Admin.GetQuery(r.Context(), teamID(r))
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, query)
}

func (s *Server) handlePutQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(r.Context(), w, err)
		return
	}

	query, err := s.uc.Admin.PutQuery(r.Context(), &model.SavedQuery{
		TeamID: teamID(r),
		Name:   req.Name,
		JQL:    req.JQL,
	})
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, query)
}

func (s *Server) handleDeleteQuery(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.Admin.DeleteQuery(r.Context(), teamID(r)); err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeMessage(r.Context(), w, http.StatusOK, "saved query deleted")
}
