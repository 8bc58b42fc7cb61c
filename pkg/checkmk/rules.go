// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package checkmk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// temperatureRulesets is the allow-list of ruleset families whose numeric
// thresholds Checkmk stores as floats. Integral inputs for these rulesets are
// coerced before transmission.
var temperatureRulesets = map[string]bool{
	"checkgroup_parameters:temperature":           true,
	"checkgroup_parameters:room_temperature":      true,
	"checkgroup_parameters:hw_temperature":        true,
	"checkgroup_parameters:hw_single_temperature": true,
}

// IsTemperatureRuleset reports whether the ruleset belongs to the temperature
// family.
func IsTemperatureRuleset(name string) bool {
	return temperatureRulesets[name]
}

// ListRules lists the rules of one ruleset in upstream order.
func (c *Client) ListRules(ctx context.Context, rulesetName string) ([]Rule, error) {
	query := url.Values{"ruleset_name": []string{rulesetName}}

	var coll collection
	_, err := c.do(ctx, &request{
		method:   "GET",
		path:     "/domain-types/rule/collections/all",
		query:    query,
		resource: fmt.Sprintf("rules of ruleset %q", rulesetName),
		family:   "rule",
	}, &coll)
	if err != nil {
		return nil, err
	}

	rules := make([]Rule, 0, len(coll.Value))
	for _, obj := range coll.Value {
		rule, err := decodeRule(obj, "")
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// GetRule fetches one rule together with its etag.
func (c *Client) GetRule(ctx context.Context, ruleID string) (*Rule, error) {
	var obj domainObject
	resp, err := c.do(ctx, &request{
		method:   "GET",
		path:     "/objects/rule/" + url.PathEscape(ruleID),
		resource: fmt.Sprintf("rule %q", ruleID),
	}, &obj)
	if err != nil {
		return nil, err
	}

	rule, err := decodeRule(obj, resp.etag)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// CreateRuleRequest describes a rule to be created.
type CreateRuleRequest struct {
	Ruleset    string
	Folder     string
	Value      map[string]any
	Conditions RuleConditions
	Comment    string
}

// CreateRule creates a rule and returns its id. Values destined for
// temperature-family rulesets get their integral thresholds coerced to
// floats, which Checkmk requires for that family.
func (c *Client) CreateRule(ctx context.Context, req CreateRuleRequest) (*Rule, error) {
	value := req.Value
	if IsTemperatureRuleset(req.Ruleset) {
		value = CoerceNumbersToFloat(value)
	}

	valueRaw, err := encodeValueRaw(value)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"ruleset":    req.Ruleset,
		"folder":     req.Folder,
		"value_raw":  valueRaw,
		"conditions": req.Conditions,
	}
	if req.Comment != "" {
		body["properties"] = map[string]any{"comment": req.Comment}
	}

	var obj domainObject
	_, err = c.do(ctx, &request{
		method:   "POST",
		path:     "/domain-types/rule/collections/all",
		body:     body,
		resource: fmt.Sprintf("rule in ruleset %q", req.Ruleset),
		family:   "rule",
	}, &obj)
	if err != nil {
		return nil, err
	}

	rule, err := decodeRule(obj, "")
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// UpdateRule replaces a rule's value using If-Match optimistic concurrency.
// A stale etag surfaces as ConflictError.
func (c *Client) UpdateRule(ctx context.Context, ruleID, etag string, value map[string]any, ruleset string) (*Rule, error) {
	if IsTemperatureRuleset(ruleset) {
		value = CoerceNumbersToFloat(value)
	}

	valueRaw, err := encodeValueRaw(value)
	if err != nil {
		return nil, err
	}

	var obj domainObject
	resp, err := c.do(ctx, &request{
		method:   "PUT",
		path:     "/objects/rule/" + url.PathEscape(ruleID),
		body:     map[string]any{"value_raw": valueRaw},
		etag:     etag,
		resource: fmt.Sprintf("rule %q", ruleID),
	}, &obj)
	if err != nil {
		return nil, err
	}

	rule, err := decodeRule(obj, resp.etag)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// DeleteRule removes a rule.
func (c *Client) DeleteRule(ctx context.Context, ruleID string) error {
	_, err := c.do(ctx, &request{
		method:   "DELETE",
		path:     "/objects/rule/" + url.PathEscape(ruleID),
		resource: fmt.Sprintf("rule %q", ruleID),
	}, nil)
	return err
}

// SearchRulesets searches rulesets by name fragment. Used for dynamic
// ruleset discovery from a service name.
func (c *Client) SearchRulesets(ctx context.Context, term string) ([]RulesetInfo, error) {
	query := url.Values{
		"fulltext": []string{term},
		"used":     []string{"true"},
	}

	var coll collection
	_, err := c.do(ctx, &request{
		method:   "GET",
		path:     "/domain-types/ruleset/collections/all",
		query:    query,
		resource: "rulesets",
		family:   "ruleset",
	}, &coll)
	if err != nil {
		return nil, err
	}

	infos := make([]RulesetInfo, 0, len(coll.Value))
	for _, obj := range coll.Value {
		infos = append(infos, RulesetInfo{Name: obj.ID, Title: obj.Title})
	}
	return infos, nil
}

// GetRulesetInfo fetches one ruleset's metadata including its valuespec.
func (c *Client) GetRulesetInfo(ctx context.Context, name string) (*RulesetInfo, error) {
	var obj struct {
		ID         string `json:"id"`
		Title      string `json:"title"`
		Extensions struct {
			Valuespec map[string]any `json:"valuespec"`
		} `json:"extensions"`
	}

	_, err := c.do(ctx, &request{
		method:   "GET",
		path:     "/objects/ruleset/" + url.PathEscape(name),
		resource: fmt.Sprintf("ruleset %q", name),
	}, &obj)
	if err != nil {
		return nil, err
	}

	return &RulesetInfo{
		Name:      obj.ID,
		Title:     obj.Title,
		Valuespec: obj.Extensions.Valuespec,
	}, nil
}

// CoerceNumbersToFloat walks a parameter map and converts integral numbers
// to floats, recursing into nested maps and slices. Checkmk rejects integer
// thresholds for float-typed valuespecs (observed with temperature levels).
func CoerceNumbersToFloat(value map[string]any) map[string]any {
	out := make(map[string]any, len(value))
	for k, v := range value {
		out[k] = coerceValue(v)
	}
	return out
}

func coerceValue(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return v
		}
		return f
	case map[string]any:
		return CoerceNumbersToFloat(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = coerceValue(item)
		}
		return out
	default:
		return v
	}
}

// encodeValueRaw renders a parameter map as the Python-literal string the
// rule endpoints expect in value_raw.
func encodeValueRaw(value map[string]any) (string, error) {
	return pythonLiteral(value)
}

// pythonLiteral renders a JSON-shaped value as a Python literal. Floats keep
// a decimal point so Checkmk parses them as floats.
func pythonLiteral(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "None", nil
	case bool:
		if t {
			return "True", nil
		}
		return "False", nil
	case string:
		encoded, err := json.Marshal(t)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%.1f", t), nil
		}
		return fmt.Sprintf("%g", t), nil
	case float32:
		return pythonLiteral(float64(t))
	case int:
		return fmt.Sprintf("%d", t), nil
	case int64:
		return fmt.Sprintf("%d", t), nil
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			encoded, err := pythonLiteral(item)
			if err != nil {
				return "", err
			}
			parts[i] = encoded
		}
		return "(" + strings.Join(parts, ", ") + ")", nil
	case map[string]any:
		parts := make([]string, 0, len(t))
		for _, key := range sortedKeys(t) {
			encoded, err := pythonLiteral(t[key])
			if err != nil {
				return "", err
			}
			quotedKey, err := pythonLiteral(key)
			if err != nil {
				return "", err
			}
			parts = append(parts, quotedKey+": "+encoded)
		}
		return "{" + strings.Join(parts, ", ") + "}", nil
	default:
		return "", fmt.Errorf("cannot encode %T as rule value", v)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func decodeRule(obj domainObject, etag string) (Rule, error) {
	var ext ruleExtensions
	if err := json.Unmarshal(obj.Extensions, &ext); err != nil {
		return Rule{}, fmt.Errorf("failed to decode rule %q: %w", obj.ID, err)
	}

	var conditions RuleConditions
	if len(ext.Conditions) > 0 {
		// Conditions come back in several historical shapes; decode errors
		// leave the conditions empty rather than failing the read.
		_ = json.Unmarshal(ext.Conditions, &conditions)
	}

	var value map[string]any
	if ext.ValueRaw != "" {
		value = parseValueRaw(ext.ValueRaw)
	}

	return Rule{
		ID:         obj.ID,
		Ruleset:    ext.Ruleset,
		Folder:     canonicalFolder(ext.Folder),
		Value:      value,
		ValueRaw:   ext.ValueRaw,
		Conditions: conditions,
		Disabled:   ext.Properties.Disabled,
		Etag:       etag,
	}, nil
}

// parseValueRaw best-effort converts a Python-literal rule value into a map.
// Values that cannot be parsed are preserved verbatim under "value_raw".
func parseValueRaw(raw string) map[string]any {
	jsonish := pythonToJSON(raw)
	var value map[string]any
	if err := json.Unmarshal([]byte(jsonish), &value); err == nil {
		return value
	}
	var anyValue any
	if err := json.Unmarshal([]byte(jsonish), &anyValue); err == nil {
		return map[string]any{"value": anyValue}
	}
	return map[string]any{"value_raw": raw}
}

// pythonToJSON rewrites the Python-literal syntax of value_raw into JSON:
// single-quoted strings, None/True/False, and tuple parentheses.
func pythonToJSON(raw string) string {
	var sb strings.Builder
	inString := false
	var quote byte
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if inString {
			switch ch {
			case '\\':
				if i+1 < len(raw) {
					sb.WriteByte(ch)
					i++
					sb.WriteByte(raw[i])
					continue
				}
				sb.WriteByte(ch)
			case quote:
				inString = false
				sb.WriteByte('"')
			case '"':
				sb.WriteString(`\"`)
			default:
				sb.WriteByte(ch)
			}
			continue
		}

		switch ch {
		case '\'', '"':
			inString = true
			quote = ch
			sb.WriteByte('"')
		case '(':
			sb.WriteByte('[')
		case ')':
			sb.WriteByte(']')
		default:
			if hasWordAt(raw, i, "None") {
				sb.WriteString("null")
				i += 3
			} else if hasWordAt(raw, i, "True") {
				sb.WriteString("true")
				i += 3
			} else if hasWordAt(raw, i, "False") {
				sb.WriteString("false")
				i += 4
			} else {
				sb.WriteByte(ch)
			}
		}
	}
	return strings.TrimSuffix(strings.TrimSpace(sb.String()), ",")
}

func hasWordAt(s string, i int, word string) bool {
	if !strings.HasPrefix(s[i:], word) {
		return false
	}
	end := i + len(word)
	if end < len(s) {
		next := s[end]
		if next >= 'a' && next <= 'z' || next >= 'A' && next <= 'Z' || next >= '0' && next <= '9' || next == '_' {
			return false
		}
	}
	return true
}
