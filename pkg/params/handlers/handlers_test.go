// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryResolution(t *testing.T) {
	registry := DefaultRegistry()

	tests := []struct {
		service string
		ruleset string
		handler string
	}{
		{"Temperature Zone 0", "", "temperature"},
		{"CPU Thermal", "", "temperature"},
		{"Oracle Tablespace USERS", "", "database"},
		{"MySQL Connections", "", "database"},
		{"HTTPS www.example.com", "", "network_services"},
		{"DNS resolver", "", "network_services"},
		{"MRPE check_load", "", "custom_checks"},
		{"Local my_probe", "", "custom_checks"},
		{"", "checkgroup_parameters:temperature", "temperature"},
		{"", "checkgroup_parameters:mysql_connections", "database"},
	}
	for _, tt := range tests {
		reg, ok := registry.Resolve(tt.service, tt.ruleset)
		require.True(t, ok, "service %q ruleset %q", tt.service, tt.ruleset)
		assert.Equal(t, tt.handler, reg.Handler.Name(), "service %q ruleset %q", tt.service, tt.ruleset)
	}
}

func TestDefaultRegistryNoMatch(t *testing.T) {
	registry := DefaultRegistry()
	_, ok := registry.Resolve("Uptime", "")
	assert.False(t, ok)
}

func TestDefaultRegistryTemperatureOutranksDatabase(t *testing.T) {
	// A database-adjacent temperature service must land on the temperature
	// handler, whose ruleset needs float-coerced values.
	registry := DefaultRegistry()
	reg, ok := registry.Resolve("MySQL Server Temperature", "")
	require.True(t, ok)
	assert.Equal(t, "temperature", reg.Handler.Name())
}
