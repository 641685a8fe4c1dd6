// File: adapters/backend_adapter.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
// Description:
//   Adapter translating api.Attributes into api.Backend calls: suspended
//   create, priority normalization, affinity, debug name, resume and the
//   startup rendezvous.
//
// Package adapters provides glue code between the core API contracts
// and the internal implementation.

package adapters

import (
	"github.com/sirupsen/logrus"

	"github.com/momentics/hiothread/api"
	"github.com/momentics/hiothread/control"
	"github.com/momentics/hiothread/internal/concurrency"
)

// Backend steps reported in errors and metrics.
const (
	OpCreate      = "create"
	OpSetPriority = "set_priority"
	OpSetAffinity = "set_affinity"
	OpResume      = "resume"
	OpWait        = "wait"
)

// BackendAdapter launches threads on an api.Backend.
type BackendAdapter struct {
	backend api.Backend
	metrics *control.ThreadMetrics
}

// NewBackendAdapter wraps backend. A nil metrics uses control.Metrics().
func NewBackendAdapter(backend api.Backend, metrics *control.ThreadMetrics) *BackendAdapter {
	if metrics == nil {
		metrics = control.Metrics()
	}
	return &BackendAdapter{backend: backend, metrics: metrics}
}

// Backend returns the wrapped backend.
func (a *BackendAdapter) Backend() api.Backend { return a.backend }

// Metrics returns the metrics the adapter records to.
func (a *BackendAdapter) Metrics() *control.ThreadMetrics { return a.metrics }

// Create launches work on a new thread configured by attrs and returns once
// the thread has taken ownership of work, not once work has finished.
// On any failure no thread is left behind and a *api.Error with
// Code == api.ErrCodeBackend is returned.
func (a *BackendAdapter) Create(work api.Work, attrs api.Attributes) (api.Handle, error) {
	if work == nil {
		return api.EmptyHandle, api.NewError(api.ErrCodeInvalidArgument, "work is nil")
	}
	rv := concurrency.NewRendezvous(work)

	h, err := a.backend.CreateSuspended(rv.Entry(), attrs.StackSize)
	if err != nil {
		return api.EmptyHandle, a.fail(OpCreate, err, attrs)
	}
	if h.IsEmpty() {
		return api.EmptyHandle, a.fail(OpCreate, api.ErrThreadNotRunning, attrs)
	}

	lowest, highest := a.backend.PriorityRange()
	native := NormalizePriority(attrs.Priority, lowest, highest)
	if err := a.backend.SetPriority(h, native); err != nil {
		a.backend.Abort(h)
		return api.EmptyHandle, a.fail(OpSetPriority, err, attrs).WithContext("native_priority", native)
	}

	if !attrs.Affinity.IsAll() {
		if err := a.backend.SetAffinity(h, uint64(attrs.Affinity)); err != nil {
			a.backend.Abort(h)
			return api.EmptyHandle, a.fail(OpSetAffinity, err, attrs)
		}
	}

	if attrs.Name != "" {
		if err := a.backend.SetName(h, attrs.Name); err != nil {
			control.Logger().WithError(err).WithField("name", attrs.Name).Debug("thread name not applied")
		}
	}

	if err := a.backend.Resume(h); err != nil {
		a.backend.Abort(h)
		return api.EmptyHandle, a.fail(OpResume, err, attrs)
	}

	rv.Wait()
	a.metrics.Created()
	control.Logger().WithFields(logrus.Fields{
		"thread_id": h.ID,
		"name":      attrs.Name,
		"priority":  native,
		"affinity":  attrs.Affinity.String(),
	}).Debug("thread started")
	return h, nil
}

func (a *BackendAdapter) fail(op string, err error, attrs api.Attributes) *api.Error {
	a.metrics.CreateFailed(op)
	control.Logger().WithError(err).WithFields(logrus.Fields{
		"op":   op,
		"name": attrs.Name,
	}).Warn("thread creation failed")
	return api.BackendError(op, err).WithContext("name", attrs.Name)
}
