// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"

	"github.com/checkmk-mcp/core/pkg/checkmk"
)

// EventService backs the event-console tools. An empty event list is a
// success with count zero, never an error.
type EventService struct {
	client  *checkmk.Client
	enabled bool
}

const eventsFeature = "event console"

func eventListResult(ctx context.Context, events []checkmk.Event) *Result {
	data := map[string]any{
		"events": events,
		"count":  len(events),
	}
	if len(events) == 0 {
		data["message"] = "no events"
	}
	return OK(ctx, data)
}

// ListServiceEvents lists events for one (host, service).
func (s *EventService) ListServiceEvents(ctx context.Context, hostName, serviceName string, limit int) *Result {
	if !s.enabled {
		return Disabled(ctx, eventsFeature)
	}
	events, err := s.client.ListEvents(ctx, checkmk.ListEventsQuery{
		HostName:    hostName,
		ServiceName: serviceName,
		Limit:       limit,
	})
	if err != nil {
		return Fail(ctx, err)
	}
	return eventListResult(ctx, events)
}

// ListHostEvents lists events for one host.
func (s *EventService) ListHostEvents(ctx context.Context, hostName string, limit int) *Result {
	if !s.enabled {
		return Disabled(ctx, eventsFeature)
	}
	events, err := s.client.ListEvents(ctx, checkmk.ListEventsQuery{
		HostName: hostName,
		Limit:    limit,
	})
	if err != nil {
		return Fail(ctx, err)
	}
	return eventListResult(ctx, events)
}

// RecentCritical lists open critical events.
func (s *EventService) RecentCritical(ctx context.Context, limit int) *Result {
	if !s.enabled {
		return Disabled(ctx, eventsFeature)
	}
	events, err := s.client.ListEvents(ctx, checkmk.ListEventsQuery{
		State: "critical",
		Phase: "open",
		Limit: limit,
	})
	if err != nil {
		return Fail(ctx, err)
	}
	return eventListResult(ctx, events)
}

// Acknowledge acknowledges one event with a comment.
func (s *EventService) Acknowledge(ctx context.Context, eventID, comment string) *Result {
	if !s.enabled {
		return Disabled(ctx, eventsFeature)
	}
	if eventID == "" {
		return Fail(ctx, &checkmk.ValidationError{Message: "event_id is required"})
	}
	if err := s.client.AcknowledgeEvent(ctx, eventID, comment); err != nil {
		return Fail(ctx, err)
	}
	return OK(ctx, map[string]any{
		"acknowledged": true,
		"event_id":     eventID,
	})
}

// Search lists events matching a free-form query expression.
func (s *EventService) Search(ctx context.Context, query string, limit int) *Result {
	if !s.enabled {
		return Disabled(ctx, eventsFeature)
	}
	events, err := s.client.ListEvents(ctx, checkmk.ListEventsQuery{
		Query: query,
		Limit: limit,
	})
	if err != nil {
		return Fail(ctx, err)
	}
	return eventListResult(ctx, events)
}
