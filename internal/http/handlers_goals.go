package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"finboard/internal/core"
)

type goalDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	TargetAmount  string `json:"target_amount"`
	CurrentAmount string `json:"current_amount"`
	Deadline      string `json:"deadline"`
	Icon          string `json:"icon,omitempty"`
}

func toGoalDTO(g core.Goal) goalDTO {
	return goalDTO{
		ID:            g.ID,
		Name:          g.Name,
		TargetAmount:  g.TargetAmount.String(),
		CurrentAmount: g.CurrentAmount.String(),
		Deadline:      g.Deadline.String(),
		Icon:          g.Icon,
	}
}

type goalRequest struct {
	Name          string `json:"name"`
	TargetAmount  string `json:"target_amount"`
	CurrentAmount string `json:"current_amount"`
	Deadline      string `json:"deadline"`
	Icon          string `json:"icon"`
}

func (req goalRequest) toGoal() (core.Goal, error) {
	target, err := core.ParseDecimalToCents(req.TargetAmount)
	if err != nil {
		return core.Goal{}, err
	}

	var current int64
	if strings.TrimSpace(req.CurrentAmount) != "" {
		current, err = core.ParseDecimalToCents(req.CurrentAmount)
		if err != nil {
			return core.Goal{}, err
		}
	}

	deadline, err := core.ParseDate(req.Deadline)
	if err != nil {
		return core.Goal{}, err
	}

	return core.Goal{
		Name:          sanitizeInput(req.Name),
		TargetAmount:  core.Money{Cents: target},
		CurrentAmount: core.Money{Cents: current},
		Deadline:      deadline,
		Icon:          sanitizeInput(req.Icon),
	}, nil
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	g, err := req.toGoal()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.ledger.CreateGoal(r.Context(), g)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toGoalDTO(created))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.ledger.Goals(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List goals failed", "error", err)
		writeError(w, http.StatusInternalServerError, "list goals failed")
		return
	}

	dtos := make([]goalDTO, len(goals))
	for i, g := range goals {
		dtos[i] = toGoalDTO(g)
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": dtos})
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	g, err := s.ledger.Goal(r.Context(), r.PathValue("id"))
	if errors.Is(err, core.ErrGoalNotFound) {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "get goal failed")
		return
	}
	writeJSON(w, http.StatusOK, toGoalDTO(g))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	g, err := req.toGoal()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	g.ID = r.PathValue("id")

	err = s.ledger.UpdateGoal(r.Context(), g)
	switch {
	case errors.Is(err, core.ErrGoalNotFound):
		writeError(w, http.StatusNotFound, "goal not found")
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toGoalDTO(g))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	err := s.ledger.DeleteGoal(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, core.ErrGoalNotFound):
		writeError(w, http.StatusNotFound, "goal not found")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "delete goal failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type projectionResponse struct {
	Goal            goalDTO       `json:"goal"`
	MonthsRemaining int           `json:"months_remaining"`
	RequiredMonthly string        `json:"required_monthly"`
	Scenario        *scenarioDTO  `json:"scenario,omitempty"`
}

type scenarioDTO struct {
	MonthsSaved    int    `json:"months_saved"`
	NewDeadline    string `json:"new_deadline"`
	MonthlyPayment string `json:"monthly_payment"`
}

// handleGoalProjection returns the required monthly contribution and,
// when ?extra= is usable, the accelerated-completion scenario.
func (s *Server) handleGoalProjection(w http.ResponseWriter, r *http.Request) {
	var extra core.Money
	if v := strings.TrimSpace(r.URL.Query().Get("extra")); v != "" {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid extra amount")
			return
		}
		extra = core.Money{Cents: cents}
	}

	proj, err := s.ledger.ProjectGoal(r.Context(), r.PathValue("id"), extra, today())
	if errors.Is(err, core.ErrGoalNotFound) {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Goal projection failed", "error", err)
		writeError(w, http.StatusInternalServerError, "goal projection failed")
		return
	}

	resp := projectionResponse{
		Goal:            toGoalDTO(proj.Goal),
		MonthsRemaining: proj.MonthsRemaining,
		RequiredMonthly: proj.Required.String(),
	}
	if proj.Scenario != nil {
		resp.Scenario = &scenarioDTO{
			MonthsSaved:    proj.Scenario.MonthsSaved,
			NewDeadline:    proj.Scenario.NewDeadline.String(),
			MonthlyPayment: proj.Scenario.MonthlyPayment.String(),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
