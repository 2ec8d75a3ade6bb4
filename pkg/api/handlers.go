package api

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"

	"github.com/matzehuels/discograph/pkg/annotation"
	"github.com/matzehuels/discograph/pkg/buildinfo"
	"github.com/matzehuels/discograph/pkg/errors"
	docio "github.com/matzehuels/discograph/pkg/io"
	"github.com/matzehuels/discograph/pkg/pipeline"
	"github.com/matzehuels/discograph/pkg/render"
)

// HeadsResponse is the body of POST /v1/heads.
type HeadsResponse struct {
	Doc        annotation.DocKey `json:"doc"`
	Heads      map[string]string `json:"heads"`
	Unresolved []string          `json:"unresolved"`
	Cached     bool              `json:"cached"`
}

// OrderResponse is the body of POST /v1/order.
type OrderResponse struct {
	Doc   annotation.DocKey `json:"doc"`
	Order []string          `json:"order"`
}

// StripResponse is the body of POST /v1/strip.
type StripResponse struct {
	Doc        annotation.DocKey `json:"doc"`
	Heads      map[string]string `json:"heads"`
	Removed    []string          `json:"removed"`
	Rewired    []string          `json:"rewired"`
	Dropped    []string          `json:"dropped"`
	Unresolved []string          `json:"unresolved"`
	Document   json.RawMessage   `json:"document"`
}

// CheckResponse is the body of POST /v1/check.
type CheckResponse struct {
	Issues []pipeline.Issue `json:"issues"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

func (s *Server) handleHeads(w http.ResponseWriter, r *http.Request) {
	doc, opts, ok := s.readRequest(w, r)
	if !ok {
		return
	}
	res, err := s.runner.Execute(r.Context(), doc, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, HeadsResponse{
		Doc:        res.Key,
		Heads:      res.Analysis.Heads,
		Unresolved: nonNil(res.Analysis.Unresolved),
		Cached:     res.CacheInfo.AnalyzeHit,
	})
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	doc, opts, ok := s.readRequest(w, r)
	if !ok {
		return
	}
	res, err := s.runner.Execute(r.Context(), doc, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OrderResponse{Doc: res.Key, Order: nonNil(res.Analysis.Order)})
}

func (s *Server) handleStrip(w http.ResponseWriter, r *http.Request) {
	doc, opts, ok := s.readRequest(w, r)
	if !ok {
		return
	}
	g, err := s.runner.Build(r.Context(), doc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	stripped, report, err := s.runner.Strip(r.Context(), g, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := docio.EncodeDocument(stripped.Doc, docio.FormatJSON)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StripResponse{
		Doc:        doc.Key,
		Heads:      report.Heads,
		Removed:    nonNil(report.Removed),
		Rewired:    nonNil(report.Rewired),
		Dropped:    nonNil(report.Dropped),
		Unresolved: nonNil(report.Unresolved),
		Document:   data,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	doc, opts, ok := s.readRequest(w, r)
	if !ok {
		return
	}
	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(render.FormatSVG)
	}
	format, err := render.ParseFormat(name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts.Formats = []string{string(format)}

	res, err := s.runner.Execute(r.Context(), doc, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[string(format)])
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	doc, opts, ok := s.readRequest(w, r)
	if !ok {
		return
	}
	issues, err := s.runner.Check(r.Context(), []*annotation.Document{doc}, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CheckResponse{Issues: nonNil(issues)})
}

// readRequest decodes the document body and the query options. On failure
// it writes the error response and reports false.
func (s *Server) readRequest(w http.ResponseWriter, r *http.Request) (*annotation.Document, pipeline.Options, bool) {
	opts, err := parseOptions(r)
	if err != nil {
		writeError(w, r, err)
		return nil, opts, false
	}
	format, err := bodyFormat(r)
	if err != nil {
		writeError(w, r, err)
		return nil, opts, false
	}

	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	doc, err := docio.ReadDocument(body, format)
	if err != nil {
		writeError(w, r, err)
		return nil, opts, false
	}
	if err := errors.ValidateDocumentName(doc.Key.Doc); err != nil {
		writeError(w, r, err)
		return nil, opts, false
	}
	return doc, opts, true
}

func parseOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	var opts pipeline.Options
	var err error
	flags := map[string]*bool{
		"sloppy":   &opts.Sloppy,
		"detailed": &opts.Detailed,
		"stripped": &opts.Stripped,
		"refresh":  &opts.Refresh,
	}
	for name, dst := range flags {
		v := q.Get(name)
		if v == "" {
			continue
		}
		if *dst, err = strconv.ParseBool(v); err != nil {
			return opts, badRequest("query parameter %s: %q is not a boolean", name, v)
		}
	}
	opts.Unresolved = q.Get("unresolved")
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

func bodyFormat(r *http.Request) (docio.Format, error) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return docio.FormatJSON, nil
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", badRequest("malformed Content-Type %q", ct)
	}
	switch mt {
	case "application/json":
		return docio.FormatJSON, nil
	case "application/yaml", "application/x-yaml", "text/yaml":
		return docio.FormatYAML, nil
	case "application/toml":
		return docio.FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported Content-Type %q (want json, yaml or toml)", mt)
}

// nonNil keeps empty lists as [] rather than null in responses.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
