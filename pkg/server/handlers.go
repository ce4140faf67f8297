package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-guesser/pkg/dataprovider"
	"github.com/goliatone/go-guesser/pkg/guesser"
	"github.com/goliatone/go-guesser/pkg/model"
	"github.com/goliatone/go-guesser/pkg/render"
)

// reservedParams are list query parameters that are not filters.
var reservedParams = map[string]struct{}{
	"format":   {},
	"page":     {},
	"per_page": {},
	"sort":     {},
	"order":    {},
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	lister, ok := s.provider.(dataprovider.ResourceLister)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"resources": s.resources.Names()})
		return
	}
	names, err := lister.Resources(r.Context())
	if err != nil {
		s.providerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"resources": names})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.guess(w, r, guesser.ViewList)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	s.guess(w, r, guesser.ViewEdit)
}

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	s.guess(w, r, guesser.ViewShow)
}

func (s *Server) guess(w http.ResponseWriter, r *http.Request, kind guesser.ViewKind) {
	name := chi.URLParam(r, "resource")
	format := r.URL.Query().Get("format")
	renderer, err := s.renderers.Resolve(format)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_FORMAT", "unsupported format: "+strings.TrimSpace(format))
		return
	}

	log := s.logger.WithFields(logrus.Fields{
		"request_id": middleware.GetReqID(r.Context()),
	})
	g, err := guesser.New(kind,
		guesser.WithResources(s.resources),
		guesser.WithLogger(log),
		guesser.WithImportPackage(s.importPackage),
		guesser.WithProduction(s.production),
	)
	if err != nil {
		writeInternal(w, log, err)
		return
	}
	defer g.Close()
	g.SetResource(name)

	page := render.Page{View: kind.String(), Resource: name}
	ticket := g.Begin()
	if kind.FetchesList() {
		result, err := s.provider.GetList(r.Context(), name, s.listParams(r))
		if err != nil {
			s.providerError(w, r, err)
			return
		}
		page.Records = result.Records
		page.Total = result.Total
	} else {
		record, err := s.provider.GetOne(r.Context(), name, chi.URLParam(r, "id"))
		if err != nil {
			s.providerError(w, r, err)
			return
		}
		page.Records = []*model.Record{record}
	}

	applied, err := g.Apply(ticket, page.Records)
	if err != nil {
		writeInternal(w, log, err)
		return
	}
	if !applied {
		writeError(w, http.StatusNotFound, "NO_RECORDS", "no records to guess "+name+" from")
		return
	}

	snippet, snippetErr := g.Snippet()
	if snippetErr != nil {
		log.WithError(snippetErr).Warn("server: snippet unavailable")
	}
	page.Root, _ = g.Node()
	page.Snippet = snippet
	page.Title = pageTitle(kind, name, chi.URLParam(r, "id"))

	body, err := renderer.Render(r.Context(), page)
	if err != nil {
		writeInternal(w, log, err)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) listParams(r *http.Request) dataprovider.ListParams {
	query := r.URL.Query()
	params := dataprovider.ListParams{
		Page:    1,
		PerPage: s.perPage,
		Sort: dataprovider.Sort{
			Field: query.Get("sort"),
			Order: query.Get("order"),
		},
	}
	if n, err := strconv.Atoi(query.Get("page")); err == nil && n > 0 {
		params.Page = n
	}
	if n, err := strconv.Atoi(query.Get("per_page")); err == nil && n > 0 {
		params.PerPage = n
	}
	for key, values := range query {
		if _, reserved := reservedParams[key]; reserved || len(values) == 0 {
			continue
		}
		if params.Filter == nil {
			params.Filter = make(map[string]any)
		}
		params.Filter[key] = values[0]
	}
	return params
}

func (s *Server) providerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, dataprovider.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, dataprovider.ErrUnknownResource):
		writeError(w, http.StatusNotFound, "UNKNOWN_RESOURCE", err.Error())
	default:
		writeInternal(w, s.logger.WithField("request_id", middleware.GetReqID(r.Context())), err)
	}
}

func pageTitle(kind guesser.ViewKind, resource, id string) string {
	if id == "" {
		return kind.Component() + " " + resource
	}
	return kind.Component() + " " + resource + " #" + id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}

func writeInternal(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	log.WithError(err).Error("server: request failed")
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}
