package route

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/foomo/contentserver-pages/service/vo"
)

// Allowlist restricts the slugs a route resolves. A nil allowlist admits every
// slug.
type Allowlist map[string]struct{}

func NewAllowlist(slugs ...string) Allowlist {
	if len(slugs) == 0 {
		return nil
	}
	a := make(Allowlist, len(slugs))
	for _, slug := range slugs {
		a[normalize(slug)] = struct{}{}
	}
	return a
}

// Allows is a pure check, no content store lookup is involved.
func (a Allowlist) Allows(slug string) bool {
	if a == nil {
		return true
	}
	_, ok := a[normalize(slug)]
	return ok
}

func normalize(slug string) string {
	return strings.Trim(strings.TrimSpace(slug), "/")
}

// Route is one page surface. Gating and exclusions are explicit per route.
type Route struct {
	Name   string
	Prefix string
	// Index is the slug served for the bare prefix, empty means none
	Index     string
	Allowlist Allowlist
	Exclude   []vo.Kind
}

type routeConfig struct {
	Name      string   `yaml:"name"`
	Prefix    string   `yaml:"prefix"`
	Index     string   `yaml:"index"`
	Allowlist []string `yaml:"allowlist"`
	Exclude   []string `yaml:"exclude"`
}

type fileConfig struct {
	Routes []routeConfig `yaml:"routes"`
}

// Defaults returns the built-in routes: the open landing route and the gated
// campaign route. Both render the global footer and drop inline footers.
func Defaults() []Route {
	exclude := []vo.Kind{"footerSection"}
	return []Route{
		{Name: "landing", Prefix: "/", Index: "home", Exclude: exclude},
		{Name: "lp", Prefix: "/lp/", Allowlist: NewAllowlist("freelancers", "agencies", "startups"), Exclude: exclude},
	}
}

// Parse decodes routes from yaml and validates them.
func Parse(data []byte) ([]Route, error) {
	var config fileConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse routes: %w", err)
	}
	routes := make([]Route, 0, len(config.Routes))
	seen := map[string]struct{}{}
	for _, rc := range config.Routes {
		prefix := "/" + strings.Trim(rc.Prefix, "/") + "/"
		if prefix == "//" {
			prefix = "/"
		}
		if rc.Name == "" {
			return nil, fmt.Errorf("route with prefix %q has no name", prefix)
		}
		if _, exists := seen[prefix]; exists {
			return nil, fmt.Errorf("route %q: prefix %q already used", rc.Name, prefix)
		}
		seen[prefix] = struct{}{}
		route := Route{Name: rc.Name, Prefix: prefix, Index: normalize(rc.Index), Allowlist: NewAllowlist(rc.Allowlist...)}
		for _, kind := range rc.Exclude {
			route.Exclude = append(route.Exclude, vo.Kind(kind))
		}
		routes = append(routes, route)
	}
	return routes, nil
}

// Load reads routes from a yaml file, falling back to Defaults for an empty path.
func Load(path string) ([]Route, error) {
	if path == "" {
		return Defaults(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read routes: %w", err)
	}
	return Parse(data)
}

// Slug extracts the slug of a request path below the route prefix. The bare
// prefix resolves to the index slug.
func (r Route) Slug(requestPath string) (string, bool) {
	if !strings.HasPrefix(requestPath, r.Prefix) && requestPath != strings.TrimSuffix(r.Prefix, "/") {
		return "", false
	}
	slug := strings.Trim(strings.TrimPrefix(requestPath, r.Prefix), "/")
	if slug == "" || requestPath == strings.TrimSuffix(r.Prefix, "/") {
		slug = r.Index
	}
	return slug, true
}

// Match picks the route with the longest prefix matching requestPath.
func Match(routes []Route, requestPath string) (Route, string, bool) {
	var (
		best  Route
		slug  string
		found bool
	)
	for _, r := range routes {
		s, ok := r.Slug(requestPath)
		if !ok || (found && len(r.Prefix) <= len(best.Prefix)) {
			continue
		}
		best, slug, found = r, s, true
	}
	return best, slug, found
}
