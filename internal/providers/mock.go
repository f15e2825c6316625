package providers

import (
	"context"
	"sync/atomic"
)

// Mock is a scriptable provider client for tests and local development.
type Mock struct {
	MockID ID

	ISRCResponse   Response
	SearchResponse Response
	TrackResponse  Response
	Err            error

	isrcCalls   atomic.Int64
	searchCalls atomic.Int64
	trackCalls  atomic.Int64
}

func (m *Mock) ID() ID {
	return m.MockID
}

func (m *Mock) SearchByISRC(ctx context.Context, isrc string) (Response, error) {
	m.isrcCalls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.ISRCResponse == nil {
		return nil, ErrNotFound
	}
	return m.ISRCResponse, nil
}

func (m *Mock) SearchTrack(ctx context.Context, artist, title string) (Response, error) {
	m.searchCalls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.SearchResponse == nil {
		return nil, ErrNotFound
	}
	return m.SearchResponse, nil
}

func (m *Mock) GetTrackByID(ctx context.Context, id string) (Response, error) {
	m.trackCalls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.TrackResponse == nil {
		return nil, ErrNotFound
	}
	return m.TrackResponse, nil
}

// Calls reports the total number of lookup calls across all methods.
func (m *Mock) Calls() int64 {
	return m.isrcCalls.Load() + m.searchCalls.Load() + m.trackCalls.Load()
}
