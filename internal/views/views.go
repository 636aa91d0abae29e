// Package views names the client read views and tells clients which of them a
// mutation made stale.
package views

import (
	"net/http"
	"sort"
	"strings"
)

// InvalidateHeader lists the read views a mutating response affects.
const InvalidateHeader = "X-Invalidate-Views"

// View identifies a client-side read model.
type View string

const (
	Applications  View = "applications"
	Credits       View = "credits"
	Notifications View = "notifications"
	Jobs          View = "jobs"
	Reports       View = "reports"
	Users         View = "users"
	Feedback      View = "feedback"
	Profile       View = "profile"
)

// Invalidate sets InvalidateHeader on w, merging with any views already listed.
// It must be called before the status line is written.
func Invalidate(w http.ResponseWriter, affected ...View) {
	set := make(map[string]struct{})
	for _, existing := range strings.Split(w.Header().Get(InvalidateHeader), ",") {
		if v := strings.TrimSpace(existing); v != "" {
			set[v] = struct{}{}
		}
	}
	for _, v := range affected {
		set[string(v)] = struct{}{}
	}
	if len(set) == 0 {
		return
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)

	w.Header().Set(InvalidateHeader, strings.Join(names, ","))
}
