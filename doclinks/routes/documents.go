package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"doclinks/doclinks/config"
	"doclinks/doclinks/controllers"
	"doclinks/doclinks/middlewares"
	"doclinks/doclinks/utils/types"
)

// DocumentRoutes registers the link extraction and agent search routes.
func DocumentRoutes(ctrl *controllers.DocumentsController, cfg config.Config) chi.Router {
	r := chi.NewRouter()

	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))

		// POST /links
		gr.Post("/links", handleJSON(func(r *http.Request) (any, int, error) {
			var req types.ExtractLinksRequest
			if err := decode(r, &req); err != nil {
				return nil, http.StatusBadRequest, err
			}
			res, err := ctrl.ExtractLinks(r.Context(), req)
			if err != nil {
				return res, statusFor(err), err
			}
			return res, http.StatusOK, nil
		}))

		// POST /links/fixed
		gr.Post("/links/fixed", handleJSON(func(r *http.Request) (any, int, error) {
			return ctrl.ExtractFixedSite(r.Context()), http.StatusOK, nil
		}))

		gr.Post("/find", handleJSON(func(r *http.Request) (any, int, error) {
			var req types.FindDocumentsRequest
			if err := decode(r, &req); err != nil {
				return nil, http.StatusBadRequest, err
			}
			res, err := ctrl.FindDocuments(r.Context(), req)
			if err != nil {
				return res, statusFor(err), err
			}
			return res, http.StatusOK, nil
		}))

		gr.Post("/find/pdf", handleJSON(func(r *http.Request) (any, int, error) {
			var req types.FindPDFRequest
			if err := decode(r, &req); err != nil {
				return nil, http.StatusBadRequest, err
			}
			res, err := ctrl.FindPDF(r.Context(), req)
			if err != nil {
				return res, statusFor(err), err
			}
			return res, http.StatusOK, nil
		}))

		gr.Post("/find/news", handleJSON(func(r *http.Request) (any, int, error) {
			var req types.FindNewsPDFRequest
			if err := decode(r, &req); err != nil {
				return nil, http.StatusBadRequest, err
			}
			res, err := ctrl.FindNewsPDF(r.Context(), req)
			if err != nil {
				return res, statusFor(err), err
			}
			return res, http.StatusOK, nil
		}))

		gr.Post("/find/annual", handleJSON(func(r *http.Request) (any, int, error) {
			var req types.FindAnnualReportsRequest
			if err := decode(r, &req); err != nil {
				return nil, http.StatusBadRequest, err
			}
			res, err := ctrl.FindAnnualReports(r.Context(), req)
			if err != nil {
				return res, statusFor(err), err
			}
			return res, http.StatusOK, nil
		}))
	})

	return r
}

// BrowserRoutes manages the extractor's shared browser session.
func BrowserRoutes(ctrl *controllers.DocumentsController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))
		gr.Post("/close", handleJSON(func(r *http.Request) (any, int, error) {
			res, err := ctrl.CloseBrowser(r.Context())
			if err != nil {
				return nil, http.StatusInternalServerError, err
			}
			return res, http.StatusOK, nil
		}))
	})
	return r
}
