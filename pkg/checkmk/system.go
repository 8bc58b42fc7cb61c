// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package checkmk

import (
	"context"
)

// Version returns site and version information.
func (c *Client) Version(ctx context.Context) (*VersionInfo, error) {
	var info VersionInfo
	_, err := c.do(ctx, &request{
		method:   "GET",
		path:     "/version",
		resource: "version",
		family:   "system",
	}, &info)
	if err != nil {
		return nil, err
	}
	return &info, nil
}
