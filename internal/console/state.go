// Package console holds the per-feature list state of the admin console:
// a pure reducer, a store that sequences fetches and re-fetches queries when
// mutations invalidate them, and the form helpers shared by the CLI.
package console

import (
	"encoding/json"
	"maps"

	"github.com/charlesng35/dairyadmin/pkg/client"
)

// Status is the lifecycle of a feature's list.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// FeatureState is everything one list screen shows.
type FeatureState struct {
	Status     Status
	Rows       []json.RawMessage
	Pagination client.Pagination
	Query      client.ListQuery
	Error      string
	RequestSeq uint64
}

// Action is an event applied by Reduce.
type Action interface {
	isAction()
}

// FetchStarted records a newly issued request. Seq must be greater than
// every earlier sequence of the feature.
type FetchStarted struct {
	Seq   uint64
	Query client.ListQuery
}

// FetchSucceeded carries the response of request Seq.
type FetchSucceeded struct {
	Seq        uint64
	Rows       []json.RawMessage
	Pagination client.Pagination
}

// FetchFailed carries the failure of request Seq.
type FetchFailed struct {
	Seq uint64
	Err string
}

// QueryChanged replaces the list query. A changed search term or filter
// set always lands on page 1.
type QueryChanged struct {
	Query client.ListQuery
}

// ErrorDismissed clears the error banner.
type ErrorDismissed struct{}

func (FetchStarted) isAction()   {}
func (FetchSucceeded) isAction() {}
func (FetchFailed) isAction()    {}
func (QueryChanged) isAction()   {}
func (ErrorDismissed) isAction() {}

// Reduce returns the state after applying action. Responses whose sequence
// is not the latest issued one are ignored.
func Reduce(state FeatureState, action Action) FeatureState {
	switch a := action.(type) {
	case FetchStarted:
		if a.Seq <= state.RequestSeq {
			return state
		}
		state.RequestSeq = a.Seq
		state.Query = a.Query
		state.Status = StatusLoading
		state.Error = ""

	case FetchSucceeded:
		if a.Seq != state.RequestSeq || state.Status != StatusLoading {
			return state
		}
		state.Status = StatusSuccess
		state.Rows = a.Rows
		if state.Rows == nil {
			state.Rows = []json.RawMessage{}
		}
		state.Pagination = a.Pagination
		state.Error = ""

	case FetchFailed:
		if a.Seq != state.RequestSeq || state.Status != StatusLoading {
			return state
		}
		state.Status = StatusError
		state.Error = a.Err

	case QueryChanged:
		next := a.Query
		if next.Search != state.Query.Search || !maps.Equal(next.Filters, state.Query.Filters) {
			next.Page = 1
		}
		if next.Page <= 0 {
			next.Page = 1
		}
		state.Query = next

	case ErrorDismissed:
		state.Error = ""
		if state.Status == StatusError {
			if state.Rows != nil {
				state.Status = StatusSuccess
			} else {
				state.Status = StatusIdle
			}
		}
	}
	return state
}
