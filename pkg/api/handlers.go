package api

import (
	"errors"
	"net/http"

	"github.com/platinummonkey/protosign/pkg/breaking"
	"github.com/platinummonkey/protosign/pkg/engine"
	"github.com/platinummonkey/protosign/pkg/httputil"
)

// sourcePayload is one .proto input in a request body.
type sourcePayload struct {
	Path    string            `json:"path"`
	Content string            `json:"content"`
	Imports map[string]string `json:"imports,omitempty"`
}

func (p sourcePayload) source(fallbackPath string) engine.Source {
	path := p.Path
	if path == "" {
		path = fallbackPath
	}
	return engine.Source{Path: path, Content: p.Content, Imports: p.Imports}
}

// breakingRequest is the body of POST /v1/breaking and /v1/compare.
type breakingRequest struct {
	Previous sourcePayload    `json:"previous"`
	Current  sourcePayload    `json:"current"`
	Config   *breakingOptions `json:"config,omitempty"`
}

// breakingOptions mirrors the breaking section of the YAML config.
type breakingOptions struct {
	UseCategories          []string `json:"use_categories,omitempty"`
	UseRules               []string `json:"use_rules,omitempty"`
	ExceptRules            []string `json:"except_rules,omitempty"`
	Ignore                 []string `json:"ignore,omitempty"`
	IgnoreUnstablePackages bool     `json:"ignore_unstable_packages,omitempty"`
}

func (o *breakingOptions) selection() breaking.Selection {
	if o == nil {
		return breaking.Selection{}
	}
	return breaking.Selection{
		UseCategories:          o.UseCategories,
		UseRules:               o.UseRules,
		ExceptRules:            o.ExceptRules,
		Ignore:                 o.Ignore,
		IgnoreUnstablePackages: o.IgnoreUnstablePackages,
	}
}

func (s *Server) handleBreaking(w http.ResponseWriter, r *http.Request) {
	var req breakingRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	report, err := s.engine.Breaking(
		req.Previous.source("previous.proto"),
		req.Current.source("current.proto"),
		req.Config.selection(),
	)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	httputil.WriteSuccess(w, report)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req breakingRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	result, err := s.engine.Compare(
		req.Previous.source("previous.proto"),
		req.Current.source("current.proto"),
	)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	httputil.WriteSuccess(w, result)
}

// fingerprintRequest is the body of POST /v1/fingerprint.
type fingerprintRequest struct {
	File sourcePayload `json:"file"`
}

// fingerprintResponse carries the hex digest.
type fingerprintResponse struct {
	Fingerprint string `json:"fingerprint"`
}

func (s *Server) handleFingerprint(w http.ResponseWriter, r *http.Request) {
	var req fingerprintRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	fp, err := s.engine.Fingerprint(req.File.source("input.proto"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	httputil.WriteSuccess(w, fingerprintResponse{Fingerprint: fp})
}

// writeEngineError maps engine failures to status codes: bad schemas
// and configs are the client's fault, everything else is ours.
func writeEngineError(w http.ResponseWriter, err error) {
	var engineErr *engine.Error
	if errors.As(err, &engineErr) {
		switch engineErr.Stage {
		case engine.StageParse, engine.StageNormalize:
			httputil.WriteUnprocessable(w, err)
			return
		case engine.StageConfig:
			httputil.WriteBadRequest(w, err.Error())
			return
		}
	}
	httputil.WriteInternalError(w, err)
}
