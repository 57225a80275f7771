// Package settings reads the node settings file (elasticsearch.yml style
// YAML) and answers the few questions runas has about it: which file realms
// are configured and enabled, which password hashing algorithm is active and
// where the HTTP layer listens.
//
// Nested maps and dotted keys are equivalent; both are flattened to dotted
// keys on load.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/runas/internal/cryptox"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

const (
	realmsPrefix        = "xpack.security.authc.realms."
	fileRealmType       = "file"
	hashingAlgorithmKey = "xpack.security.authc.password_hashing.algorithm"
	httpSSLEnabledKey   = "xpack.security.http.ssl.enabled"
	defaultHTTPPort     = 9200
)

// Settings is a flat view of the node settings.
type Settings struct {
	values map[string]string
}

// Load parses the YAML file at path. A missing file yields empty settings.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML settings.
func Parse(data []byte) (*Settings, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	values := make(map[string]string)
	flatten("", root, values)
	return &Settings{values: values}, nil
}

// New returns settings holding the given dotted keys.
func New(values map[string]string) *Settings {
	if values == nil {
		values = map[string]string{}
	}
	return &Settings{values: values}
}

func flatten(prefix string, v any, out map[string]string) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			flatten(join(prefix, k), child, out)
		}
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, fmt.Sprint(item))
		}
		out[prefix] = strings.Join(parts, ",")
	case nil:
		out[prefix] = ""
	default:
		out[prefix] = fmt.Sprint(t)
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// Get returns the raw value of key.
func (s *Settings) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Bool returns key as a boolean, or def when unset or unparsable.
func (s *Settings) Bool(key string, def bool) bool {
	v, ok := s.values[key]
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

// Realms returns the names of configured realms of type realmType, sorted.
func (s *Settings) Realms(realmType string) []string {
	prefix := realmsPrefix + realmType + "."
	names := lo.FilterMap(lo.Keys(s.values), func(k string, _ int) (string, bool) {
		rest, ok := strings.CutPrefix(k, prefix)
		if !ok {
			return "", false
		}
		name, _, ok := strings.Cut(rest, ".")
		return name, ok && name != ""
	})
	names = lo.Uniq(names)
	sort.Strings(names)
	return names
}

// FileRealms returns the names of configured file realms.
func (s *Settings) FileRealms() []string {
	return s.Realms(fileRealmType)
}

// RealmEnabled reports the enabled setting of a realm. Realms are enabled
// unless the setting says otherwise.
func (s *Settings) RealmEnabled(realmType, name string) bool {
	return s.Bool(realmsPrefix+realmType+"."+name+".enabled", true)
}

// FileRealmUsable reports whether the file realm can authenticate the
// temporary user. Only a single explicitly configured file realm is
// checked; with none or several the realm is assumed implicitly enabled.
func (s *Settings) FileRealmUsable() (realm string, ok bool) {
	realms := s.FileRealms()
	if len(realms) != 1 {
		return "", true
	}
	return realms[0], s.RealmEnabled(fileRealmType, realms[0])
}

// HashingAlgorithm returns the configured password hashing algorithm.
func (s *Settings) HashingAlgorithm() string {
	if v, ok := s.values[hashingAlgorithmKey]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return cryptox.DefaultAlgorithm
}

// DefaultURL derives the base URL of the local node from the HTTP settings.
func (s *Settings) DefaultURL() string {
	scheme := "http"
	if s.Bool(httpSSLEnabledKey, false) {
		scheme = "https"
	}

	host := "localhost"
	for _, key := range []string{"http.publish_host", "http.host", "network.publish_host", "network.host"} {
		if v, ok := s.values[key]; ok && v != "" {
			host = firstValue(v)
			break
		}
	}
	host = resolveSpecialHost(host)

	port := defaultHTTPPort
	if v, ok := s.values["http.port"]; ok && v != "" {
		// http.port may be a range such as 9200-9300
		first, _, _ := strings.Cut(firstValue(v), "-")
		if p, err := strconv.Atoi(strings.TrimSpace(first)); err == nil {
			port = p
		}
	}

	if strings.Contains(host, ":") && !strings.HasPrefix(host, "[") {
		host = "[" + host + "]"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, host, port)
}

func firstValue(v string) string {
	first, _, _ := strings.Cut(v, ",")
	return strings.TrimSpace(first)
}

// resolveSpecialHost maps bind-style values to something a client can dial.
func resolveSpecialHost(host string) string {
	switch {
	case host == "0.0.0.0", host == "::", host == "0":
		return "localhost"
	case strings.HasPrefix(host, "_") && strings.HasSuffix(host, "_"):
		// _local_, _site_, _global_ and interface names
		return "localhost"
	}
	return host
}
