package web

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"carecal/internal/family"
	"carecal/internal/onboarding"
)

type memberRequest struct {
	Name     string `json:"name"`
	Relation string `json:"relation"`
	Phone    string `json:"phone"`
}

func (s *Server) handleListFamily(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.roster.List())
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := s.roster.Add(req.Name, req.Relation, req.Phone)
	if errors.Is(err, family.ErrMissingField) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	s.roster.Delete(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEmergency(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Emergency)
}

func (s *Server) handleStartOnboarding(w http.ResponseWriter, _ *http.Request) {
	f := onboarding.NewFlow(uuid.NewString())
	s.flowsMu.Lock()
	s.flows[f.State().ID] = f
	s.flowsMu.Unlock()
	writeJSON(w, http.StatusCreated, f.State())
}

func (s *Server) flow(w http.ResponseWriter, r *http.Request) (*onboarding.Flow, bool) {
	s.flowsMu.Lock()
	f, ok := s.flows[mux.Vars(r)["id"]]
	s.flowsMu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "onboarding flow not found")
	}
	return f, ok
}

// writeFlow maps flow errors to status codes: validation failures are 422,
// calls made on the wrong step are 409.
func writeFlow(w http.ResponseWriter, st onboarding.State, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, st)
	case errors.Is(err, onboarding.ErrOutOfOrder):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	}
}

func (s *Server) handleGetOnboarding(w http.ResponseWriter, r *http.Request) {
	f, ok := s.flow(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, f.State())
}

type phoneRequest struct {
	CallingCode string `json:"calling_code"`
	Number      string `json:"number"`
}

func (s *Server) handleOnboardingPhone(w http.ResponseWriter, r *http.Request) {
	f, ok := s.flow(w, r)
	if !ok {
		return
	}
	var req phoneRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	st, err := f.SubmitPhone(req.CallingCode, req.Number)
	writeFlow(w, st, err)
}

type codeRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleOnboardingCode(w http.ResponseWriter, r *http.Request) {
	f, ok := s.flow(w, r)
	if !ok {
		return
	}
	var req codeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := f.EnterCode(req.Code); err != nil {
		writeFlow(w, f.State(), err)
		return
	}
	st, err := f.Verify()
	writeFlow(w, st, err)
}

type roleRequest struct {
	Role string `json:"role"`
}

func (s *Server) handleOnboardingRole(w http.ResponseWriter, r *http.Request) {
	f, ok := s.flow(w, r)
	if !ok {
		return
	}
	var req roleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	st, err := f.SelectRole(onboarding.Role(req.Role))
	writeFlow(w, st, err)
}

func (s *Server) handleOnboardingConfirm(w http.ResponseWriter, r *http.Request) {
	f, ok := s.flow(w, r)
	if !ok {
		return
	}
	st, err := f.Confirm()
	writeFlow(w, st, err)
}
