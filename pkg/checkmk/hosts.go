// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package checkmk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// ListHostsQuery filters and pages the host listing.
type ListHostsQuery struct {
	Search              string `json:"search,omitempty"`
	Folder              string `json:"folder,omitempty"`
	Limit               int    `json:"limit,omitempty"`
	Offset              int    `json:"offset,omitempty"`
	EffectiveAttributes bool   `json:"effective_attributes,omitempty"`
}

// ListHosts lists configured hosts. Query objects go in a POST body per the
// Checkmk 2.4 convention.
func (c *Client) ListHosts(ctx context.Context, q ListHostsQuery) ([]Host, error) {
	var coll collection
	_, err := c.do(ctx, &request{
		method:   "POST",
		path:     "/domain-types/host_config/collections/all",
		body:     q,
		resource: "hosts",
	}, &coll)
	if err != nil {
		return nil, err
	}

	hosts := make([]Host, 0, len(coll.Value))
	for _, obj := range coll.Value {
		host, err := decodeHost(obj)
		if err != nil {
			return nil, err
		}
		hosts = append(hosts, host)
	}
	return hosts, nil
}

// GetHost fetches a single host, optionally with its effective attributes.
func (c *Client) GetHost(ctx context.Context, name string, effectiveAttributes bool) (*Host, error) {
	query := url.Values{}
	if effectiveAttributes {
		query.Set("effective_attributes", "true")
	}

	var obj domainObject
	_, err := c.do(ctx, &request{
		method:   "GET",
		path:     "/objects/host_config/" + url.PathEscape(name),
		query:    query,
		resource: fmt.Sprintf("host %q", name),
	}, &obj)
	if err != nil {
		return nil, err
	}

	host, err := decodeHost(obj)
	if err != nil {
		return nil, err
	}
	return &host, nil
}

// CreateHost creates a host in the given folder.
func (c *Client) CreateHost(ctx context.Context, name, folder string, attributes map[string]any) (*Host, error) {
	if folder == "" {
		folder = "/"
	}
	body := map[string]any{
		"host_name":  name,
		"folder":     folder,
		"attributes": attributes,
	}

	var obj domainObject
	_, err := c.do(ctx, &request{
		method:   "POST",
		path:     "/domain-types/host_config/collections/all",
		query:    url.Values{"bake_agent": []string{"false"}},
		body:     body,
		resource: fmt.Sprintf("host %q", name),
		family:   "host_config",
	}, &obj)
	if err != nil {
		return nil, err
	}

	host, err := decodeHost(obj)
	if err != nil {
		return nil, err
	}
	return &host, nil
}

// UpdateHost updates host attributes using etag-based optimistic concurrency.
func (c *Client) UpdateHost(ctx context.Context, name, etag string, attributes map[string]any) (*Host, error) {
	var obj domainObject
	_, err := c.do(ctx, &request{
		method:   "PUT",
		path:     "/objects/host_config/" + url.PathEscape(name),
		body:     map[string]any{"update_attributes": attributes},
		etag:     etag,
		resource: fmt.Sprintf("host %q", name),
	}, &obj)
	if err != nil {
		return nil, err
	}

	host, err := decodeHost(obj)
	if err != nil {
		return nil, err
	}
	return &host, nil
}

// GetHostEtag fetches the current etag of a host without its payload.
func (c *Client) GetHostEtag(ctx context.Context, name string) (string, error) {
	resp, err := c.do(ctx, &request{
		method:   "GET",
		path:     "/objects/host_config/" + url.PathEscape(name),
		resource: fmt.Sprintf("host %q", name),
	}, nil)
	if err != nil {
		return "", err
	}
	return resp.etag, nil
}

// DeleteHost removes a host from the configuration.
func (c *Client) DeleteHost(ctx context.Context, name string) error {
	_, err := c.do(ctx, &request{
		method:   "DELETE",
		path:     "/objects/host_config/" + url.PathEscape(name),
		resource: fmt.Sprintf("host %q", name),
	}, nil)
	return err
}

// ListHostServices lists the monitored services of one host. This hits the
// monitoring endpoint, not the configuration endpoint, so it reflects live
// state.
func (c *Client) ListHostServices(ctx context.Context, hostName string, columns []string) ([]Service, error) {
	if len(columns) == 0 {
		columns = defaultServiceColumns
	}
	query := url.Values{}
	for _, col := range columns {
		query.Add("columns", col)
	}

	var coll collection
	_, err := c.do(ctx, &request{
		method:   "GET",
		path:     "/objects/host/" + url.PathEscape(hostName) + "/collections/services",
		query:    query,
		resource: fmt.Sprintf("services of host %q", hostName),
		family:   "monitoring",
	}, &coll)
	if err != nil {
		return nil, err
	}
	return decodeServices(coll)
}

func decodeHost(obj domainObject) (Host, error) {
	var ext hostExtensions
	if err := json.Unmarshal(obj.Extensions, &ext); err != nil {
		return Host{}, fmt.Errorf("failed to decode host %q: %w", obj.ID, err)
	}
	return Host{
		Name:                obj.ID,
		Folder:              canonicalFolder(ext.Folder),
		Attributes:          ext.Attributes,
		EffectiveAttributes: ext.EffectiveAttributes,
	}, nil
}

// canonicalFolder normalizes Checkmk folder spellings ("", "/", "~", "~a~b",
// "/a/b") to the canonical slash form with a leading slash and, at root,
// exactly "/".
func canonicalFolder(folder string) string {
	if folder == "" || folder == "~" || folder == "/" {
		return "/"
	}
	out := make([]rune, 0, len(folder)+1)
	for _, r := range folder {
		if r == '~' || r == '\\' {
			r = '/'
		}
		out = append(out, r)
	}
	s := string(out)
	if s[0] != '/' {
		s = "/" + s
	}
	for len(s) > 1 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
