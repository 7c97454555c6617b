package httpapi

import (
	"net/http"

	"calorina/internal/metrics"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, metrics.GetSysHealth(s.DataDir, s.Sessions.Count()))
}
