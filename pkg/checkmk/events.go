// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package checkmk

import (
	"context"
	"encoding/json"
	"fmt"
)

// ListEventsQuery filters event-console events. Zero-valued fields are
// omitted from the query.
type ListEventsQuery struct {
	HostName    string `json:"host_name,omitempty"`
	ServiceName string `json:"application,omitempty"`
	State       string `json:"state,omitempty"`
	Phase       string `json:"phase,omitempty"`
	Query       string `json:"query,omitempty"`
	Limit       int    `json:"limit,omitempty"`
}

// ListEvents lists event-console events. An empty result is a success, not
// an error.
func (c *Client) ListEvents(ctx context.Context, q ListEventsQuery) ([]Event, error) {
	var coll collection
	_, err := c.do(ctx, &request{
		method:   "POST",
		path:     "/domain-types/event_console/collections/all",
		body:     q,
		resource: "events",
		family:   "event_console",
	}, &coll)
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(coll.Value))
	for _, obj := range coll.Value {
		event, err := decodeEvent(obj)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

// AcknowledgeEvent acknowledges one event-console event with a comment.
func (c *Client) AcknowledgeEvent(ctx context.Context, eventID, comment string) error {
	body := map[string]any{
		"filter_type":    "by_id",
		"event_id":       eventID,
		"phase":          "ack",
		"change_comment": comment,
	}

	_, err := c.do(ctx, &request{
		method:   "POST",
		path:     "/domain-types/event_console/actions/update_and_acknowledge/invoke",
		body:     body,
		resource: fmt.Sprintf("event %q", eventID),
		family:   "event_console",
	}, nil)
	return err
}

func decodeEvent(obj domainObject) (Event, error) {
	var ext struct {
		HostName    string `json:"host"`
		Application string `json:"application"`
		State       int    `json:"state"`
		Phase       string `json:"phase"`
		Text        string `json:"text"`
		FirstTime   string `json:"first"`
		LastTime    string `json:"last"`
		Count       int    `json:"count"`
	}
	if err := json.Unmarshal(obj.Extensions, &ext); err != nil {
		return Event{}, fmt.Errorf("failed to decode event %q: %w", obj.ID, err)
	}
	return Event{
		ID:          obj.ID,
		HostName:    ext.HostName,
		ServiceName: ext.Application,
		State:       ext.State,
		Phase:       ext.Phase,
		Text:        ext.Text,
		FirstTime:   ext.FirstTime,
		LastTime:    ext.LastTime,
		Count:       ext.Count,
	}, nil
}
