package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"painel/internal/core"
	"painel/internal/log"
	"painel/internal/views"
)

// viewFilters is the sidebar partial; it is re-rendered so that the choices
// follow the cascade of the current filters.
const viewFilters = "filtros"

// partialTemplates maps each partial to its template.
var partialTemplates = map[string]string{
	viewFilters:          "filters",
	views.ViewOverview:   "overview",
	views.ViewDocumentos: "documentos",
	views.ViewMunicipios: "municipios",
}

// pageData is the template input of the dashboard page and its partials.
type pageData struct {
	User      string
	Query     string
	Params    DashboardParams
	Dashboard views.Dashboard
	Error     string
}

// handleIndex renders the dashboard page with every view.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Página não encontrada").Write(w)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	data, status := s.pageData(r)
	s.execute(w, r, status, "index.html", data, nil)
}

// handlePartial renders one view as an htmx fragment. Load errors halt the
// view; notices about data render with 200.
func (s *Server) handlePartial(view string) http.HandlerFunc {
	name := partialTemplates[view]
	return func(w http.ResponseWriter, r *http.Request) {
		if resp := RequireGET(r); resp != nil {
			resp.Write(w)
			return
		}

		data, status := s.pageData(r)
		if data.Error != "" {
			ErrorResponse(status, data.Error).TriggerErrorNotification(data.Error).Write(w)
			return
		}

		resp := NewHTMXResponse().TriggerRendered(view, data.Dashboard.TotalRows, data.Dashboard.FilteredRows)
		s.execute(w, r, status, name, data, resp)
	}
}

// handleDashboardJSON returns the whole dashboard for the query as JSON.
func (s *Server) handleDashboardJSON(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	data, status := s.pageData(r)
	if data.Error != "" {
		NewHTMXResponse().Status(status).BodyJSON(map[string]string{"error": data.Error}).Write(w)
		return
	}
	NewHTMXResponse().BodyJSON(data.Dashboard).Write(w)
}

func (s *Server) pageData(r *http.Request) (pageData, int) {
	params := ParseDashboardParams(r.URL.Query())
	data := pageData{
		Query:  params.Encode(),
		Params: params,
	}
	if sess, ok := SessionFromContext(r.Context()); ok {
		data.User = sess.Username
	}

	dash, err := s.dashboard(r.Context(), params)
	if err != nil {
		data.Error = loadErrorMessage(err)
		logger := log.FromContext(r.Context())
		if !core.IsFatal(err) {
			logger.WarnContext(r.Context(), "Extract load interrupted",
				log.FieldOperation, log.OpLoad,
				log.FieldDataPath, s.cfg.DataPath,
				log.FieldError, err)
			return data, http.StatusServiceUnavailable
		}
		logger.ErrorContext(r.Context(), "Failed to load extract",
			log.FieldOperation, log.OpLoad,
			log.FieldDataPath, s.cfg.DataPath,
			log.FieldError, err)
		return data, http.StatusInternalServerError
	}
	data.Dashboard = dash
	return data, http.StatusOK
}

// loadErrorMessage is the user-facing text for an error that halts rendering.
func loadErrorMessage(err error) string {
	var ioErr *core.IOError
	var parseErr *core.ParseError
	switch {
	case errors.As(err, &ioErr):
		return "Não foi possível ler o arquivo de dados: " + ioErr.Error()
	case errors.As(err, &parseErr):
		return "Arquivo de dados inválido: " + parseErr.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Carregamento dos dados interrompido."
	}
	return "Erro ao carregar os dados: " + err.Error()
}

// execute renders a template into a buffer so that template errors never
// produce half-written responses.
func (s *Server) execute(w http.ResponseWriter, r *http.Request, status int, name string, data any, resp *HTMXResponseBuilder) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err, log.FieldTemplate, name)
		InternalServerError("Erro ao montar a página.").Write(w)
		return
	}

	if resp == nil {
		resp = NewHTMXResponse()
	}
	resp.Status(status).BodyHTML(buf.String()).Write(w)
}
