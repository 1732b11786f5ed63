package types

// Route records which path of the query state machine produced a reply
type Route string

const (
	RouteCache    Route = "cache"
	RouteGreeting Route = "greeting"
	RouteRefused  Route = "refused"
	RouteSingle   Route = "single"
	RouteMulti    Route = "multi"
	RouteFailed   Route = "failed"
)

// AllRoutes returns all valid routes
func AllRoutes() []Route {
	return []Route{
		RouteCache,
		RouteGreeting,
		RouteRefused,
		RouteSingle,
		RouteMulti,
		RouteFailed,
	}
}

// Cacheable reports whether replies on this route are stored in the query cache
func (r Route) Cacheable() bool {
	return r == RouteSingle || r == RouteMulti
}

// String returns the string representation of the route
func (r Route) String() string {
	return string(r)
}
