package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"twonest/internal/core"
	"twonest/internal/services"
)

// transactionRequest is the JSON input for creating a transaction.
// Amount is a string so locale forms like "12,50" parse at the boundary.
type transactionRequest struct {
	Date     string        `json:"date"`
	User     string        `json:"user"`
	Type     string        `json:"type"`
	Category string        `json:"category"`
	Amount   string        `json:"amount"`
	Notes    string        `json:"notes"`
	Split    *splitRequest `json:"split"`
}

type splitRequest struct {
	Mode   string             `json:"mode"`
	Shares map[string]float64 `json:"shares"`
}

type goalRequest struct {
	Name   string `json:"name"`
	Target string `json:"target"`
	Due    string `json:"due"`
}

type contributeRequest struct {
	Amount string `json:"amount"`
}

type importRequest struct {
	Token string `json:"token"`
	Mode  string `json:"mode"`
}

type shareResponse struct {
	Token string `json:"token"`
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	txs, err := s.svc.ListTransactions(r.Context(), month)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, txs)
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	tx := core.Transaction{
		Date:     req.Date,
		User:     sanitizeInput(req.User),
		Type:     core.TxType(req.Type),
		Category: sanitizeInput(req.Category),
		Amount:   amount,
		Notes:    sanitizeInput(req.Notes),
	}
	if req.Split != nil {
		tx.Split = &core.SplitPolicy{
			Mode:   core.SplitMode(req.Split.Mode),
			Shares: req.Split.Shares,
		}
	}

	created, err := s.svc.AddTransaction(r.Context(), tx)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.svc.GetDashboard(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, dash)
}

func (s *Server) handleSettleUp(w http.ResponseWriter, r *http.Request) {
	tx, err := s.svc.SettleUp(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleGetBudgets(w http.ResponseWriter, r *http.Request) {
	b, err := s.svc.GetBudgets(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, b)
}

func (s *Server) handleUpdateBudgets(w http.ResponseWriter, r *http.Request) {
	var b core.Budgets
	if err := decodeBody(r, &b); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.svc.UpdateBudgets(r.Context(), b); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, b)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.GetSettings(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var st core.Settings
	if err := decodeBody(r, &st); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	st.Users[0] = sanitizeInput(st.Users[0])
	st.Users[1] = sanitizeInput(st.Users[1])
	if err := s.svc.UpdateSettings(r.Context(), st); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.svc.ListGoals(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, goals)
}

func (s *Server) handleAddGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	target, err := core.ParseAmount(req.Target)
	if err != nil {
		respondServiceError(w, r, fmt.Errorf("%w: target", core.ErrInvalidTarget))
		return
	}
	goal, err := s.svc.AddGoal(r.Context(), core.Goal{
		Name:   sanitizeInput(req.Name),
		Target: target,
		Due:    req.Due,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, goal)
}

func (s *Server) handleContributeToGoal(w http.ResponseWriter, r *http.Request) {
	var req contributeRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	goal, err := s.svc.ContributeToGoal(r.Context(), r.PathValue("id"), amount)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, goal)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteGoal(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGamification(w http.ResponseWriter, r *http.Request) {
	g, err := s.svc.GetGamification(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, g)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.ExportCSV(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	filename := fmt.Sprintf("twonest-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

func (s *Server) handleShareToken(w http.ResponseWriter, r *http.Request) {
	token, err := s.svc.ShareToken(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, shareResponse{Token: token})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	mode := services.ImportMode(req.Mode)
	if req.Mode == "" {
		mode = services.ImportMerge
	}
	if err := s.svc.Import(r.Context(), req.Token, mode); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
