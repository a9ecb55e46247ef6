package authflow

import "net/url"

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(path string, opts NavigateOptions)

// Navigate calls f.
func (f NavigatorFunc) Navigate(path string, opts NavigateOptions) { f(path, opts) }

// ResetEmail resolves the email carried into the reset-password step.
// The forgot-password flow forwards it either as router state or as a
// query parameter; when both are present the query parameter wins.
func ResetEmail(query url.Values, state map[string]any) string {
	if query != nil {
		if v := query.Get("email"); v != "" {
			return v
		}
	}
	if state != nil {
		if v, ok := state["email"].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
