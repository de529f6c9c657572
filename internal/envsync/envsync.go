// Package envsync makes a fixed set of environment variables exist, with the
// given values, on a remote service.
//
// Each variable is processed on its own: create it, and if the provider
// reports a conflict, update it. A failure is recorded in that variable's
// Outcome and never aborts the batch. Only cancellation of the context stops
// the run early.
package envsync

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/duboisf/renderenv/internal/api"
	"github.com/duboisf/renderenv/internal/vars"
)

// ErrInterrupted is returned by Sync when the context is cancelled before
// every variable was attempted.
var ErrInterrupted = errors.New("sync interrupted")

// Client is the subset of the Render API used by a Synchronizer.
type Client interface {
	CreateEnvVar(ctx context.Context, serviceID, key, value string) (*api.Response, error)
	UpdateEnvVar(ctx context.Context, serviceID, key, value string) (*api.Response, error)
}

var _ Client = (*api.Client)(nil)

// Action is what happened to a single variable.
type Action int

const (
	// Failed means the variable could not be created or updated.
	Failed Action = iota
	// Created means the variable did not exist and was created.
	Created
	// Updated means the variable existed and its value was replaced.
	Updated
)

func (a Action) String() string {
	switch a {
	case Created:
		return "created"
	case Updated:
		return "updated"
	default:
		return "failed"
	}
}

// Outcome is the explicit result of processing one variable.
type Outcome struct {
	Key    string
	Action Action
	// StatusCode is the last HTTP status observed, 0 when no response arrived.
	StatusCode int
	// Detail is an excerpt of the response body of a rejected request.
	Detail string
	// Conflict is set when the create request reported that the variable exists.
	Conflict bool
	// Err is the transport error, if any.
	Err error
}

// Succeeded reports whether the variable now holds its value remotely.
func (o Outcome) Succeeded() bool {
	return o.Action != Failed
}

// Result is the tally of a sync run.
type Result struct {
	Succeeded int
	Failed    int
	Outcomes  []Outcome
	// Interrupted is set when the run stopped before attempting every variable.
	Interrupted bool
}

// OK reports whether the whole run succeeded.
func (r Result) OK() bool {
	return r.Failed == 0 && !r.Interrupted
}

func (r *Result) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	if o.Succeeded() {
		r.Succeeded++
	} else {
		r.Failed++
	}
}

// Reporter receives progress notifications. Implementations print them; the
// Synchronizer does not depend on what they do.
type Reporter interface {
	// Attempt is called before the create request for key.
	Attempt(key string)
	// Conflict is called when key already exists and an update follows.
	Conflict(key string)
	// Done is called once per attempted variable with its outcome.
	Done(o Outcome)
}

type nopReporter struct{}

func (nopReporter) Attempt(string)  {}
func (nopReporter) Conflict(string) {}
func (nopReporter) Done(Outcome)    {}

// Synchronizer runs the create-or-update procedure against a Client.
type Synchronizer struct {
	client   Client
	reporter Reporter
}

// New creates a Synchronizer. A nil reporter discards progress.
func New(client Client, reporter Reporter) *Synchronizer {
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &Synchronizer{client: client, reporter: reporter}
}

// Sync processes every variable of set against serviceID, one request at a
// time and in order. The returned error is non-nil only when ctx was cancelled
// before the run completed; it wraps both ErrInterrupted and ctx.Err(). The
// Result is valid in either case.
func (s *Synchronizer) Sync(ctx context.Context, serviceID string, set *vars.Set) (Result, error) {
	var res Result
	for _, v := range set.Variables() {
		if err := ctx.Err(); err != nil {
			res.Interrupted = true
			return res, fmt.Errorf("%w: %w", ErrInterrupted, err)
		}

		s.reporter.Attempt(v.Key)
		o := s.syncOne(ctx, serviceID, v)
		if o.Err != nil && ctx.Err() != nil {
			// The in-flight request was abandoned; it is neither a success nor a failure.
			res.Interrupted = true
			return res, fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
		}
		s.reporter.Done(o)
		res.add(o)
	}
	return res, nil
}

func (s *Synchronizer) syncOne(ctx context.Context, serviceID string, v vars.Variable) Outcome {
	o := Outcome{Key: v.Key}

	resp, err := s.client.CreateEnvVar(ctx, serviceID, v.Key, v.Value)
	if err != nil {
		o.Err = err
		return o
	}
	o.StatusCode = resp.StatusCode

	switch resp.StatusCode {
	case http.StatusCreated:
		o.Action = Created
		return o
	case http.StatusConflict:
		o.Conflict = true
	default:
		o.Detail = resp.Body
		return o
	}

	s.reporter.Conflict(v.Key)
	resp, err = s.client.UpdateEnvVar(ctx, serviceID, v.Key, v.Value)
	if err != nil {
		o.StatusCode = 0
		o.Err = err
		return o
	}
	o.StatusCode = resp.StatusCode
	if resp.StatusCode == http.StatusOK {
		o.Action = Updated
		return o
	}
	o.Detail = resp.Body
	return o
}
