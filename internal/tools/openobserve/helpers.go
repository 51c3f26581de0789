package openobserve

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

const microsPerHour = int64(time.Hour / time.Microsecond)

// resolveTimeWindow turns optional hours / start / end arguments into a
// concrete microsecond range. An explicit hours lookback wins over start/end
// and must be positive. The end bound always carries a one hour forward pad
// as a clock-skew buffer.
func resolveTimeWindow(now time.Time, hours int64, hasHours bool, start int64, hasStart bool, end int64, hasEnd bool) (int64, int64, error) {
	nowMicros := now.UnixMicro()

	if hasHours {
		if hours <= 0 {
			return 0, 0, validationErrorf("hours must be positive, got %d", hours)
		}
		return nowMicros - hours*microsPerHour, nowMicros + microsPerHour, nil
	}

	startMicros := nowMicros - 24*microsPerHour
	if hasStart {
		startMicros = start
	}
	endMicros := nowMicros + microsPerHour
	if hasEnd {
		endMicros = end
	}
	return startMicros, endMicros, nil
}

// clampSize floors size at 1 and applies the maxRows ceiling when one is
// configured (maxRows <= 0 means unlimited).
func clampSize(size, maxRows int) int {
	if size < 1 {
		size = 1
	}
	if maxRows > 0 && size > maxRows {
		size = maxRows
	}
	return size
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// applyMaxChars enforces the response character budget. Payloads within
// budget pass through untouched. Oversized payloads are replaced by a
// structured preview; the field names of the replacement are a compatibility
// contract and must not change.
func applyMaxChars(payload any, maxChars int) any {
	if maxChars <= 0 {
		return payload
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return payload
	}
	// Budget is counted in characters, not bytes.
	runes := []rune(string(encoded))
	if len(runes) <= maxChars {
		return payload
	}

	replacement := map[string]any{
		"truncated": true,
		"max_chars": maxChars,
		"preview":   string(runes[:maxChars]),
	}
	if m, ok := payload.(map[string]any); ok {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		replacement["keys"] = keys
	}
	return replacement
}

// normalizeAPIPath strips leading slashes and rejects absolute URLs and
// parent-directory traversal. Allow-list enforcement happens at the caller.
func normalizeAPIPath(path string) (string, error) {
	cleaned := strings.TrimSpace(path)
	if strings.HasPrefix(cleaned, "http://") || strings.HasPrefix(cleaned, "https://") {
		return "", validationErrorf("only relative API paths are allowed (no scheme/host)")
	}
	cleaned = strings.TrimLeft(cleaned, "/")
	for _, segment := range strings.Split(cleaned, "/") {
		if segment == ".." {
			return "", validationErrorf("path traversal is not allowed")
		}
	}
	return cleaned, nil
}

// parseKVPairs converts key=value strings into query parameters.
func parseKVPairs(pairs []string) (url.Values, error) {
	params := url.Values{}
	for _, item := range pairs {
		key, value, found := strings.Cut(item, "=")
		if !found {
			return nil, validationErrorf("expected key=value pair, got: %s", item)
		}
		params.Set(key, value)
	}
	return params, nil
}

// escapeSQLLiteral doubles single quotes for embedding in an SQL string
// literal. This is the only sanitization applied to tool-supplied query text.
func escapeSQLLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func toolSuccess(data any) *mcp.CallToolResult {
	b, err := json.Marshal(data)
	if err != nil {
		return toolError(fmt.Sprintf("failed to marshal response: %v", err))
	}
	return mcp.NewToolResultText(string(b))
}

func toolError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: msg,
			},
		},
	}
}

func getStringParam(args map[string]any, key, defaultVal string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return defaultVal
}

// getOptionalIntParam extracts an integer argument, reporting whether it was
// present. JSON numbers arrive as float64; fractional values are rejected.
func getOptionalIntParam(args map[string]any, key string) (int64, bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, false, nil
	}

	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || math.Trunc(n) != n {
			return 0, false, validationErrorf("'%s' must be an integer", key)
		}
		return int64(n), true, nil
	case int:
		return int64(n), true, nil
	case int64:
		return n, true, nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false, validationErrorf("'%s' must be an integer", key)
		}
		return i, true, nil
	default:
		return 0, false, validationErrorf("'%s' must be an integer", key)
	}
}

func getIntParam(args map[string]any, key string, defaultVal int) (int, error) {
	v, present, err := getOptionalIntParam(args, key)
	if err != nil {
		return 0, err
	}
	if !present {
		return defaultVal, nil
	}
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, validationErrorf("'%s' is out of range", key)
	}
	return int(v), nil
}

// getStringSliceParam extracts an array-of-strings argument.
func getStringSliceParam(args map[string]any, key string) ([]string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, validationErrorf("'%s' must be an array of strings", key)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, validationErrorf("'%s' must contain only strings", key)
		}
		out = append(out, s)
	}
	return out, nil
}
