package httpapi

import (
	"net/http"

	"calorina/internal/assistant"
	"calorina/internal/diet"
	"calorina/internal/health"
	"calorina/internal/session"
)

func (s *Server) handleStartChat(w http.ResponseWriter, r *http.Request) {
	turn, err := s.Sessions.Start(r.Context(), sessionID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if turn.Reply.Text == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, turn)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	turn, err := s.Sessions.SendMessage(r.Context(), sessionID(r), req.Text)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, turn)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	notes, err := s.Sessions.Notifications(sessionID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if notes == nil {
		notes = []session.Notification{}
	}
	writeJSON(w, http.StatusOK, notes)
}

func (s *Server) handleQuestionnaire(w http.ResponseWriter, r *http.Request) {
	var profile health.Profile
	if err := decode(r, &profile); err != nil {
		s.fail(w, r, err)
		return
	}
	plan, err := s.Sessions.SubmitQuestionnaire(r.Context(), sessionID(r), profile)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

type plansResponse struct {
	DietPlan    *diet.DietPlan         `json:"dietPlan"`
	WorkoutPlan *assistant.WorkoutPlan `json:"workoutPlan"`
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	view, err := s.Sessions.Snapshot(sessionID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plansResponse{DietPlan: view.DietPlan, WorkoutPlan: view.WorkoutPlan})
}

func (s *Server) handleCustomMeals(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date  string          `json:"date"`
		Meals []diet.MealItem `json:"meals"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	plan, err := s.Sessions.AddCustomMeals(sessionID(r), req.Date, req.Meals)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleCompletion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string           `json:"date"`
		Kind session.ItemKind `json:"kind"`
		Name string           `json:"name"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	done, err := s.Sessions.ToggleCompletion(sessionID(r), req.Date, req.Kind, req.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"completed": done})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Sessions.Statistics(sessionID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
