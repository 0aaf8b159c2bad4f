// Package route matches HTTP requests against method and path patterns.
//
// Patterns are either plain paths with ":name" segments, whose values become
// named params, or regular expressions whose capture groups become the params
// "param0" to "paramN". The first registered route that matches wins; a
// request nothing matches goes to the no-match handler, or gets 404.
package route

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/xinjiayu/rxbridge"
	"github.com/xinjiayu/rxbridge/internal/logging"
	"github.com/xinjiayu/rxbridge/types"
)

// Verbs accepted by Match. MethodAll matches every request method.
const (
	MethodGet     = http.MethodGet
	MethodPut     = http.MethodPut
	MethodPost    = http.MethodPost
	MethodDelete  = http.MethodDelete
	MethodOptions = http.MethodOptions
	MethodHead    = http.MethodHead
	MethodTrace   = http.MethodTrace
	MethodConnect = http.MethodConnect
	MethodPatch   = http.MethodPatch
	MethodAll     = "ALL"
)

var (
	// ErrUnknownVerb is returned when registering a route for a verb outside
	// the supported set.
	ErrUnknownVerb = errors.New("unknown HTTP verb")

	// ErrInvalidPattern is returned when a pattern does not compile.
	ErrInvalidPattern = errors.New("invalid route pattern")

	// ErrHandlerRequired is returned when registering a nil handler.
	ErrHandlerRequired = errors.New("route handler is required")
)

var verbs = map[string]struct{}{
	MethodGet: {}, MethodPut: {}, MethodPost: {}, MethodDelete: {}, MethodOptions: {},
	MethodHead: {}, MethodTrace: {}, MethodConnect: {}, MethodPatch: {}, MethodAll: {},
}

var paramPattern = regexp.MustCompile(`:([A-Za-z][A-Za-z0-9_]*)`)

type route struct {
	verb    string
	pattern string
	re      *regexp.Regexp
	names   []string
	handler http.Handler
}

func (rt *route) match(method, path string) (map[string]string, bool) {
	if rt.verb != MethodAll && rt.verb != method {
		return nil, false
	}

	groups := rt.re.FindStringSubmatch(path)
	if groups == nil {
		return nil, false
	}

	params := make(map[string]string, len(groups)-1)
	for i, value := range groups[1:] {
		if rt.names != nil {
			params[rt.names[i]] = value
		} else {
			params["param"+strconv.Itoa(i)] = value
		}
	}
	return params, true
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the router logger.
func WithLogger(logger types.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Router dispatches requests to the first matching route. It is safe to
// register routes while serving.
type Router struct {
	mu      sync.RWMutex
	routes  []*route
	noMatch http.Handler
	logger  types.Logger
}

// NewRouter creates an empty router.
func NewRouter(opts ...Option) *Router {
	r := &Router{logger: logging.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Match registers handler for verb and a ":name" path pattern.
func (r *Router) Match(verb, pattern string, handler http.Handler) error {
	verb, err := checkRoute(verb, handler)
	if err != nil {
		return err
	}

	var names []string
	var expr strings.Builder
	last := 0
	for _, loc := range paramPattern.FindAllStringSubmatchIndex(pattern, -1) {
		expr.WriteString(regexp.QuoteMeta(pattern[last:loc[0]]))
		expr.WriteString(`([^/]+)`)
		names = append(names, pattern[loc[2]:loc[3]])
		last = loc[1]
	}
	expr.WriteString(regexp.QuoteMeta(pattern[last:]))

	re, err := compile(expr.String())
	if err != nil {
		return err
	}
	if names == nil {
		names = []string{}
	}

	r.add(&route{verb: verb, pattern: pattern, re: re, names: names, handler: handler})
	return nil
}

// MatchRegex registers handler for verb and a regular expression that must
// match the whole request path.
func (r *Router) MatchRegex(verb, expr string, handler http.Handler) error {
	verb, err := checkRoute(verb, handler)
	if err != nil {
		return err
	}

	re, err := compile(expr)
	if err != nil {
		return err
	}

	r.add(&route{verb: verb, pattern: expr, re: re, handler: handler})
	return nil
}

// NoMatch sets the handler for requests no route matches.
func (r *Router) NoMatch(handler http.Handler) *Router {
	r.mu.Lock()
	r.noMatch = handler
	r.mu.Unlock()
	return r
}

// Get registers a GET route.
func (r *Router) Get(pattern string, handler http.Handler) *Router {
	return r.must(MethodGet, pattern, handler)
}

// Put registers a PUT route.
func (r *Router) Put(pattern string, handler http.Handler) *Router {
	return r.must(MethodPut, pattern, handler)
}

// Post registers a POST route.
func (r *Router) Post(pattern string, handler http.Handler) *Router {
	return r.must(MethodPost, pattern, handler)
}

// Delete registers a DELETE route.
func (r *Router) Delete(pattern string, handler http.Handler) *Router {
	return r.must(MethodDelete, pattern, handler)
}

// Options registers an OPTIONS route.
func (r *Router) Options(pattern string, handler http.Handler) *Router {
	return r.must(MethodOptions, pattern, handler)
}

// Head registers a HEAD route.
func (r *Router) Head(pattern string, handler http.Handler) *Router {
	return r.must(MethodHead, pattern, handler)
}

// Trace registers a TRACE route.
func (r *Router) Trace(pattern string, handler http.Handler) *Router {
	return r.must(MethodTrace, pattern, handler)
}

// Connect registers a CONNECT route.
func (r *Router) Connect(pattern string, handler http.Handler) *Router {
	return r.must(MethodConnect, pattern, handler)
}

// Patch registers a PATCH route.
func (r *Router) Patch(pattern string, handler http.Handler) *Router {
	return r.must(MethodPatch, pattern, handler)
}

// All registers a route for every method.
func (r *Router) All(pattern string, handler http.Handler) *Router {
	return r.must(MethodAll, pattern, handler)
}

// ServeHTTP dispatches req to the first matching route.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.RLock()
	routes := r.routes
	noMatch := r.noMatch
	r.mu.RUnlock()

	for _, rt := range routes {
		params, ok := rt.match(req.Method, req.URL.Path)
		if !ok {
			continue
		}
		for name, value := range params {
			req.SetPathValue(name, value)
		}
		rt.handler.ServeHTTP(w, req.WithContext(context.WithValue(req.Context(), paramsKey{}, params)))
		return
	}

	r.logger.Debug("no route matched", "method", req.Method, "path", req.URL.Path)
	if noMatch != nil {
		noMatch.ServeHTTP(w, req)
		return
	}
	http.NotFound(w, req)
}

type paramsKey struct{}

// Params returns the params captured by the route that matched req.
func Params(req *http.Request) map[string]string {
	params, _ := req.Context().Value(paramsKey{}).(map[string]string)
	return params
}

func (r *Router) must(verb, pattern string, handler http.Handler) *Router {
	if err := r.Match(verb, pattern, handler); err != nil {
		panic(err)
	}
	return r
}

func (r *Router) add(rt *route) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// copy on write so that ServeHTTP can iterate without the lock
	routes := make([]*route, len(r.routes), len(r.routes)+1)
	copy(routes, r.routes)
	r.routes = append(routes, rt)
	r.logger.Debug("route registered", "verb", rt.verb, "pattern", rt.pattern)
}

func checkRoute(verb string, handler http.Handler) (string, error) {
	if handler == nil {
		return "", &rxbridge.UsageError{Op: "match", Err: ErrHandlerRequired}
	}

	verb = strings.ToUpper(verb)
	if _, ok := verbs[verb]; !ok {
		return "", &rxbridge.UsageError{Op: "match", Err: fmt.Errorf("%w: %q", ErrUnknownVerb, verb)}
	}
	return verb, nil
}

func compile(expr string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(`^(?:` + expr + `)$`)
	if err != nil {
		return nil, &rxbridge.UsageError{Op: "match", Err: fmt.Errorf("%w: %w", ErrInvalidPattern, err)}
	}
	return re, nil
}
