package uri

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/celeryq/gocelery/internal/errors"
	"github.com/celeryq/gocelery/internal/util"
)

// UserInfo is the decoded { user, pass? } pair that may precede an
// authority's host.
type UserInfo struct {
	User string
	Pass *string
}

// Authority is the decomposed "user:pass@host:port" component of a URI.
type Authority struct {
	Host     string
	UserInfo *UserInfo
	Port     *int
}

// Uri is the generic decomposition every per-scheme parser starts from.
type Uri struct {
	Scheme    Scheme
	Authority *Authority
	Path      string
	Query     Query
	Raw       string
}

var hostLabel = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9\-]{0,61}[A-Za-z0-9])?$`)

// ValidateHost reports whether host is composed of RFC-1123-like labels:
// each label starts and ends with a letter or digit, may contain hyphens
// in the interior, and is at most 63 characters.
func ValidateHost(host string) error {
	const op = "uri.ValidateHost"
	if host == "" {
		return errors.E(errors.Op(op), errors.ParseError, "empty host")
	}
	for _, label := range strings.Split(host, ".") {
		if len(label) > 63 || !hostLabel.MatchString(label) {
			return errors.E(errors.Op(op), errors.ParseError, "invalid host label: "+label)
		}
	}
	return nil
}

// ParsePort parses a strictly decimal port string in [0, 65535], rejecting
// hex/binary/octal-looking prefixes, non-digit characters, and
// out-of-range values.
func ParsePort(s string) (int, error) {
	const op = "uri.ParsePort"
	if s == "" {
		return 0, errors.E(errors.Op(op), errors.ParseError, "empty port")
	}
	if len(s) > 1 && s[0] == '0' {
		return 0, errors.E(errors.Op(op), errors.ParseError, "port must not have a leading zero: "+s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, errors.E(errors.Op(op), errors.ParseError, "port must be decimal: "+s)
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.E(errors.Op(op), errors.ParseError, err)
	}
	if n < 0 || n > 65535 {
		return 0, errors.E(errors.Op(op), errors.ParseError, "port out of range [0,65535]: "+s)
	}
	return n, nil
}

// ParseUri decomposes s into scheme, authority, path, and query, applying
// the host/port/query validation rules shared by every per-scheme parser.
// It leans on net/url for authority decoding (which already percent-
// decodes userinfo) but replaces its query handling entirely, since
// net/url.ParseQuery treats '+' as an encoded space while the Celery
// query grammar treats '+' as a literal character.
func ParseUri(s string) (*Uri, error) {
	const op = "uri.ParseUri"

	scheme, err := GetScheme(s)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, errors.E(errors.Op(op), errors.ParseError, err)
	}

	result := &Uri{Scheme: scheme, Path: u.Path, Raw: s}

	if u.Host != "" || u.User != nil {
		host := strings.ToLower(u.Hostname())
		if host != "" {
			if err := ValidateHost(host); err != nil {
				return nil, err
			}
		}
		auth := &Authority{Host: host}
		if portStr := u.Port(); portStr != "" {
			port, err := ParsePort(portStr)
			if err != nil {
				return nil, err
			}
			auth.Port = &port
		}
		if u.User != nil {
			ui := &UserInfo{User: u.User.Username()}
			if pass, ok := u.User.Password(); ok {
				ui.Pass = &pass
			}
			auth.UserInfo = ui
		}
		result.Authority = auth
	}

	if u.RawQuery != "" {
		q, err := ParseQueryString(u.RawQuery)
		if err != nil {
			return nil, err
		}
		result.Query = q
	}

	return result, nil
}

// Query maps a camelCase-normalized query key to either a single string or
// an ordered sequence of strings, for keys that repeated.
type Query map[string]interface{}

var queryTokenChar = regexp.MustCompile(`^[A-Za-z0-9*\-._+%]+$`)

// ParseQueryString parses the portion of a URI after the '?' per the
// grammar key=value(&key=value)*, where each token is drawn from
// [A-Za-z0-9*\-._+%]. An empty final token, or an empty key, is invalid;
// an empty value is allowed. Repeated keys collapse into an ordered
// sequence of values; snake_case keys are normalized to camelCase.
func ParseQueryString(raw string) (Query, error) {
	const op = "uri.ParseQueryString"
	q := make(Query)
	if raw == "" {
		return q, nil
	}
	pairs := strings.Split(raw, "&")
	for i, pair := range pairs {
		if pair == "" {
			if i == len(pairs)-1 {
				return nil, errors.E(errors.Op(op), errors.ParseError, "empty final query token")
			}
			return nil, errors.E(errors.Op(op), errors.ParseError, "empty query token")
		}
		eq := strings.IndexByte(pair, '=')
		if eq < 0 {
			return nil, errors.E(errors.Op(op), errors.ParseError, "missing '=' in query token: "+pair)
		}
		rawKey, rawVal := pair[:eq], pair[eq+1:]
		if rawKey == "" {
			return nil, errors.E(errors.Op(op), errors.ParseError, "empty query key")
		}
		if !queryTokenChar.MatchString(rawKey) {
			return nil, errors.E(errors.Op(op), errors.ParseError, "invalid query key: "+rawKey)
		}
		if rawVal != "" && !queryTokenChar.MatchString(rawVal) {
			return nil, errors.E(errors.Op(op), errors.ParseError, "invalid query value: "+rawVal)
		}
		val, err := percentDecode(rawVal)
		if err != nil {
			return nil, errors.E(errors.Op(op), errors.ParseError, err)
		}
		key := util.ToCamelCase(rawKey)
		appendQueryValue(q, key, val)
	}
	return q, nil
}

func appendQueryValue(q Query, key, val string) {
	existing, ok := q[key]
	if !ok {
		q[key] = val
		return
	}
	switch v := existing.(type) {
	case string:
		q[key] = []string{v, val}
	case []string:
		q[key] = append(v, val)
	}
}

func percentDecode(s string) (string, error) {
	if !strings.ContainsRune(s, '%') {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '%' {
			if i+2 >= len(s) {
				return "", errors.New("truncated percent-encoding in " + s)
			}
			n, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
			if err != nil {
				return "", errors.New("invalid percent-encoding in " + s)
			}
			b.WriteByte(byte(n))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String(), nil
}
