package routes

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"doclinks/doclinks/config"
	"doclinks/doclinks/controllers"
	"doclinks/doclinks/middlewares"
	"doclinks/doclinks/utils/logging"
)

// maxTaskFrame bounds one AgentTaskRequest frame.
const maxTaskFrame = 64 << 10

// AgentRoutes exposes the streamed search at /ws. Clients send one
// AgentTaskRequest per search and receive step frames then a result frame.
func AgentRoutes(ctrl *controllers.AgentsController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Use(middlewares.AuthMiddleware(cfg))
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			logging.ErrorLogger.Error("websocket accept error",
				zap.String("client", middlewares.ClientID(r.Context())), zap.Error(err))
			return
		}
		conn.SetReadLimit(maxTaskFrame)
		ctrl.AgentWebSocket(r.Context(), conn)
	})
	return r
}
