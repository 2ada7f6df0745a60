package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"carecal/internal/i18n"
	"carecal/internal/ics"
	appLog "carecal/internal/log"
	"carecal/internal/model"
	"carecal/internal/schedule"
)

// sessionResponse is a schedule.View plus the localized chrome for it.
type sessionResponse struct {
	schedule.View
	Title      string   `json:"title"`
	Headers    []string `json:"weekday_headers"`
	TodayLabel string   `json:"today_label"`
	Language   string   `json:"language"`
}

func (s *Server) render(r *http.Request, v schedule.View) sessionResponse {
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = s.cfg.Language
	}
	tr := i18n.New(s.bundle, lang)
	return sessionResponse{
		View:       v,
		Title:      tr.MonthTitle(v.Selection.Month, v.Selection.Year),
		Headers:    tr.WeekdayHeaders(s.cfg.Weekday()),
		TodayLabel: tr.Today(),
		Language:   tr.Lang(),
	}
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*schedule.Session, bool) {
	sess, err := s.sessions.Get(mux.Vars(r)["id"])
	if errors.Is(err, schedule.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return sess, true
}

// seed is the configured events plus the latest subscription import when
// it covers the month a new session opens on.
func (s *Server) seed() []model.Event {
	out := append([]model.Event(nil), s.cfg.SeedEvents...)
	if s.feed == nil {
		return out
	}
	snap := s.feed.Snapshot()
	sel := schedule.NewSelection(s.clock.Now())
	if snap.Year == sel.Year && snap.Month == sel.Month {
		out = append(out, snap.Events...)
	}
	return out
}

type openSessionRequest struct {
	Screen string `json:"screen"`
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	screen, err := schedule.ParseScreen(req.Screen)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := s.sessions.Open(schedule.SessionOptions{
		Screen:    screen,
		WeekStart: s.cfg.Weekday(),
		Clock:     s.clock,
		IDs:       s.ids,
		Seed:      s.seed(),
	})
	writeJSON(w, http.StatusCreated, s.render(r, sess.Snapshot()))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.render(r, sess.Snapshot()))
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Close(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

type selectRequest struct {
	Day int `json:"day"`
}

type selectResponse struct {
	Selected bool `json:"selected"`
	sessionResponse
}

// handleSelect taps a day. A day that cannot be selected is not an error;
// the response reports it and carries the unchanged view.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req selectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	selected := sess.Select(req.Day)
	writeJSON(w, http.StatusOK, selectResponse{Selected: selected, sessionResponse: s.render(r, sess.Snapshot())})
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Next()
	writeJSON(w, http.StatusOK, s.render(r, sess.Snapshot()))
}

func (s *Server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Previous()
	writeJSON(w, http.StatusOK, s.render(r, sess.Snapshot()))
}

// handleListEvents returns every event, or one day's with ?day=n.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	day, ok, err := queryInt(r, "day")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, sess.Events())
		return
	}
	writeJSON(w, http.StatusOK, sess.EventsOn(day))
}

type eventRequest struct {
	Title string `json:"title"`
	Time  string `json:"time"`
	Date  int    `json:"date"`
}

type addEventResponse struct {
	Added bool         `json:"added"`
	Event *model.Event `json:"event,omitempty"`
}

// handleAddEvent submits the add form. A missing date means the selected
// day. Blank title or time is a silent no-op reported as added=false.
func (s *Server) handleAddEvent(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req eventRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Date == 0 {
		req.Date = sess.Selection().Day
	}

	ev, added := sess.Add(schedule.NewEvent{Title: req.Title, Time: req.Time, Date: req.Date})
	if !added {
		writeJSON(w, http.StatusOK, addEventResponse{Added: false})
		return
	}
	writeJSON(w, http.StatusCreated, addEventResponse{Added: true, Event: &ev})
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Delete(mux.Vars(r)["eventID"])
	w.WriteHeader(http.StatusNoContent)
}

// handleEditEvent accepts the edit form; editing does not change anything
// yet, so the unchanged event list is returned.
func (s *Server) handleEditEvent(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req eventRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess.Edit(mux.Vars(r)["eventID"], schedule.NewEvent{Title: req.Title, Time: req.Time, Date: req.Date})
	writeJSON(w, http.StatusOK, sess.Events())
}

// handleExport downloads the displayed month as an iCalendar file.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sel := sess.Selection()
	body, err := ics.Export(sess.Events(), sel.Year, sel.Month, s.loc, s.clock.Now())
	if err != nil {
		appLog.Error("ics export failed", err, "session", sess.ID())
		writeError(w, http.StatusInternalServerError, "failed to export calendar")
		return
	}

	name := strings.ToLower(strings.ReplaceAll(i18n.New(s.bundle, "en").MonthTitle(sel.Month, sel.Year), " ", "-"))
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="carecal-`+name+`.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
