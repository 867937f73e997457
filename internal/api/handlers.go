package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/san-kum/pidlab/internal/metrics"
	"github.com/san-kum/pidlab/internal/pipeline"
	"github.com/san-kum/pidlab/internal/process"
	"github.com/san-kum/pidlab/internal/sim"
	"github.com/san-kum/pidlab/internal/tuning"
)

type curveRequest struct {
	Times         []float64 `json:"times"`
	Outputs       []float64 `json:"outputs"`
	StepMagnitude float64   `json:"step_magnitude"`
	InitialOutput *float64  `json:"initial_output,omitempty"`
	StepTime      *float64  `json:"step_time,omitempty"`
}

func (c curveRequest) curve() process.ReactionCurve {
	curve := process.ReactionCurve{
		Times:         c.Times,
		Outputs:       c.Outputs,
		StepMagnitude: c.StepMagnitude,
	}
	if len(c.Outputs) > 0 {
		curve.InitialOutput = c.Outputs[0]
	}
	if len(c.Times) > 0 {
		curve.StepTime = c.Times[0]
	}
	if c.InitialOutput != nil {
		curve.InitialOutput = *c.InitialOutput
	}
	if c.StepTime != nil {
		curve.StepTime = *c.StepTime
	}
	return curve
}

type ruleRequest struct {
	Name   string         `json:"name"`
	Lambda float64        `json:"lambda,omitempty"`
	Gains  *process.Gains `json:"gains,omitempty"`
}

func (s *Server) rule(r ruleRequest) (tuning.Rule, error) {
	p := tuning.Params{
		Lambda: s.cfg.Tuning.Lambda,
		Kp:     s.cfg.Tuning.Manual.Kp,
		Ti:     s.cfg.Tuning.Manual.Ti,
		Td:     s.cfg.Tuning.Manual.Td,
	}
	if r.Lambda != 0 {
		p.Lambda = r.Lambda
	}
	if r.Gains != nil {
		p.Kp, p.Ti, p.Td = r.Gains.Kp, r.Gains.Ti, r.Gains.Td
	}
	name := r.Name
	if name == "" {
		name = s.cfg.Tuning.Rule
	}
	rule, err := tuning.ParseRule(name, p)
	if err != nil {
		return nil, badRequest(err)
	}
	return rule, nil
}

type simRequest struct {
	Setpoint *float64 `json:"setpoint,omitempty"`
	Horizon  float64  `json:"horizon,omitempty"`
	Dt       float64  `json:"dt,omitempty"`
}

func (s *Server) simConfig(r simRequest) sim.Config {
	cfg := s.pipe.SimConfig()
	if r.Setpoint != nil {
		cfg.Setpoint = *r.Setpoint
	}
	if r.Horizon != 0 {
		cfg.Horizon = r.Horizon
	}
	if r.Dt != 0 {
		cfg.Dt = r.Dt
	}
	if limit := s.cfg.Server.MaxSteps; limit > 0 && (cfg.MaxSteps <= 0 || cfg.MaxSteps > limit) {
		cfg.MaxSteps = limit
	}
	return cfg
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) identify(w http.ResponseWriter, r *http.Request) {
	var req curveRequest
	if !s.decode(w, r, &req) {
		return
	}
	report, err := s.pipe.Identify(req.curve())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

type tuneRequest struct {
	Model process.Model `json:"model"`
	Rule  ruleRequest   `json:"rule"`
}

func (s *Server) tune(w http.ResponseWriter, r *http.Request) {
	var req tuneRequest
	if !s.decode(w, r, &req) {
		return
	}
	rule, err := s.rule(req.Rule)
	if err != nil {
		s.fail(w, err)
		return
	}
	t, err := s.pipe.Tune(req.Model, rule)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, t)
}

type simulateRequest struct {
	Model process.Model `json:"model"`
	Gains process.Gains `json:"gains"`
	simRequest
}

type simulateResponse struct {
	Trace       process.Trace       `json:"trace"`
	Performance process.Performance `json:"performance"`
	Integrals   metrics.Integrals   `json:"integrals"`
}

func (s *Server) simulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if !s.decode(w, r, &req) {
		return
	}
	tr, err := sim.SimulateContext(r.Context(), req.Model, req.Gains, s.simConfig(req.simRequest))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, simulateResponse{
		Trace:       tr,
		Performance: metrics.Extract(tr, s.cfg.MetricOptions()),
		Integrals:   metrics.ComputeIntegrals(tr, tr.Setpoint),
	})
}

type measureRequest struct {
	Times    []float64 `json:"times"`
	Outputs  []float64 `json:"outputs"`
	Setpoint float64   `json:"setpoint"`
}

type measureResponse struct {
	Performance process.Performance `json:"performance"`
	Integrals   metrics.Integrals   `json:"integrals"`
}

func (s *Server) measure(w http.ResponseWriter, r *http.Request) {
	var req measureRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Times) != len(req.Outputs) || len(req.Times) < 2 {
		s.fail(w, badRequest(fmt.Errorf("need matching times and outputs, got %d and %d", len(req.Times), len(req.Outputs))))
		return
	}
	tr := process.Trace{Times: req.Times, Outputs: req.Outputs, Setpoint: req.Setpoint}
	s.writeJSON(w, http.StatusOK, measureResponse{
		Performance: metrics.Compute(tr, req.Setpoint, s.cfg.MetricOptions()),
		Integrals:   metrics.ComputeIntegrals(tr, req.Setpoint),
	})
}

type compareRequest struct {
	Model process.Model `json:"model"`
	Rules []ruleRequest `json:"rules,omitempty"`
}

func (s *Server) rules(reqs []ruleRequest) ([]tuning.Rule, error) {
	if len(reqs) == 0 {
		return nil, nil
	}
	rules := make([]tuning.Rule, 0, len(reqs))
	for _, rr := range reqs {
		rule, err := s.rule(rr)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func (s *Server) compare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := req.Model.Validate(); err != nil {
		s.fail(w, &process.ConfigurationError{Field: "model", Detail: req.Model.String(), Err: err})
		return
	}
	rules, err := s.rules(req.Rules)
	if err != nil {
		s.fail(w, err)
		return
	}
	results, err := s.pipe.Compare(r.Context(), req.Model, rules)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.countFailures(results)
	s.writeJSON(w, http.StatusOK, results)
}

type runRequest struct {
	Curve curveRequest  `json:"curve"`
	Rules []ruleRequest `json:"rules,omitempty"`
}

func (s *Server) run(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if !s.decode(w, r, &req) {
		return
	}
	rules, err := s.rules(req.Rules)
	if err != nil {
		s.fail(w, err)
		return
	}
	report, err := s.pipe.Run(r.Context(), req.Curve.curve(), rules)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.countFailures(report.Results)
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) countFailures(results []pipeline.Result) {
	for _, res := range results {
		if !res.OK() {
			s.metrics.RuleFailed(res.Rule)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &requestError{err: err}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.fail(w, badRequest(fmt.Errorf("decode request: %w", err)))
		return false
	}
	return true
}

// statusFor maps request problems to 400, domain failures to 422 and
// anything else to 500.
func statusFor(err error) int {
	var (
		req  *requestError
		est  *process.EstimationError
		sel  *process.SelectionError
		tun  *process.TuningError
		conf *process.ConfigurationError
	)
	switch {
	case errors.As(err, &req):
		return http.StatusBadRequest
	case errors.As(err, &est), errors.As(err, &sel), errors.As(err, &tun), errors.As(err, &conf):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	} else {
		s.log.Debug("request rejected", "status", status, "error", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// writeJSON encodes before writing the header so an unencodable value
// becomes a 500 instead of an empty 200.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		s.log.Error("failed to encode response", "error", err)
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(errorResponse{Error: "failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
