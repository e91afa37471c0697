package controllers

import (
	"net/http"

	"doclinks/doclinks/utils/jsonutils"
)

type HealthController struct {
	docs *DocumentsController
}

func NewHealthController(docs *DocumentsController) *HealthController {
	return &HealthController{docs: docs}
}

type healthResponse struct {
	Status         string `json:"status"`
	BrowserSession string `json:"browser_session"`
}

func (h *HealthController) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", BrowserSession: "idle"}
	if h.docs != nil && h.docs.BrowserActive() {
		resp.BrowserSession = "active"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(jsonutils.ToJSON(resp)))
}
