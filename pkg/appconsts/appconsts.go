// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package appconsts

const (
	// Name is the name of the Checkmk MCP server. This is used in the MCP
	// initialize handshake and in user-facing output.
	Name = "checkmk-mcp-server"
)

// Version is the version of the Checkmk MCP server. This is a variable so it
// can be set at build time using ldflags. The default value is "dev", which is
// used for local development builds.
var Version = "dev"
