package socket

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/hupe1980/agentwire/protocol"
)

// PathSuffix is the fixed streaming endpoint suffix appended to the base URL.
const PathSuffix = "/responses/ws"

// schemeUpgrades maps HTTP schemes to their socket counterparts, preserving
// transport security.
var schemeUpgrades = map[string]string{
	"http":  "ws",
	"https": "wss",
	"ws":    "ws",
	"wss":   "wss",
}

// DeriveURL turns a base service URL into the socket endpoint URL.
// The scheme is upgraded (secure stays secure, plain stays plain), the fixed
// path suffix is appended exactly once, and query parameters merge in layers:
// client defaults, then anything explicit on the base URL, then per-request
// overrides. Per-request values win on key collision. Nested and array
// query values serialize with bracket notation.
func DeriveURL(base string, defaults, overrides map[string]any) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", protocol.NewUserError("invalid base URL %q: %v", base, err)
	}
	scheme, ok := schemeUpgrades[parsed.Scheme]
	if !ok {
		return "", protocol.NewUserError("unsupported base URL protocol %q", parsed.Scheme)
	}
	parsed.Scheme = scheme

	if !strings.HasSuffix(strings.TrimSuffix(parsed.Path, "/"), PathSuffix) {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/") + PathSuffix
	} else {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}

	merged := map[string]any{}
	for k, v := range defaults {
		merged[k] = v
	}
	for k, vs := range parsed.Query() {
		if len(vs) == 1 {
			merged[k] = vs[0]
			continue
		}
		entries := make([]any, 0, len(vs))
		for _, v := range vs {
			entries = append(entries, v)
		}
		merged[k] = entries
	}
	for k, v := range overrides {
		merged[k] = v
	}
	parsed.RawQuery = encodeQuery(merged)

	return parsed.String(), nil
}

// QueryPairs flattens possibly nested query values into unescaped key/value
// pairs, deterministically ordered. Maps become key[subkey]=value, slices
// become key[]=value per entry. Both transports serialize query parameters
// through this one encoder.
func QueryPairs(values map[string]any) [][2]string {
	var pairs [][2]string
	appendValue(&pairs, "", values)
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	return pairs
}

func encodeQuery(values map[string]any) string {
	pairs := QueryPairs(values)
	encoded := make([]string, 0, len(pairs))
	for _, p := range pairs {
		encoded = append(encoded, url.QueryEscape(p[0])+"="+url.QueryEscape(p[1]))
	}
	return strings.Join(encoded, "&")
}

func appendValue(pairs *[][2]string, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		for k, sub := range v {
			key := k
			if prefix != "" {
				key = prefix + "[" + k + "]"
			}
			appendValue(pairs, key, sub)
		}
	case []any:
		for _, entry := range v {
			appendValue(pairs, prefix+"[]", entry)
		}
	case nil:
		// nil means the key was explicitly removed
	default:
		*pairs = append(*pairs, [2]string{prefix, fmt.Sprint(v)})
	}
}

// HeaderLayer is one layer of header overrides. A nil value unsets the
// header; later layers may re-set a previously unset key.
type HeaderLayer map[string]*string

// MergeHeaders folds override layers into a canonical header set, applied in
// order (client defaults first, per-request overrides last).
func MergeHeaders(layers ...HeaderLayer) http.Header {
	merged := map[string]string{}
	for _, layer := range layers {
		for k, v := range layer {
			key := http.CanonicalHeaderKey(k)
			if v == nil {
				delete(merged, key)
				continue
			}
			merged[key] = *v
		}
	}
	headers := http.Header{}
	for k, v := range merged {
		headers.Set(k, v)
	}
	return headers
}

// Identity computes the canonical cache key of a (url, header set) pair.
func Identity(socketURL string, headers http.Header) string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(socketURL)
	for _, k := range keys {
		b.WriteString("\n")
		b.WriteString(strings.ToLower(k))
		b.WriteString("=")
		b.WriteString(strings.Join(headers.Values(k), ","))
	}
	return b.String()
}
