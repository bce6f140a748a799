package middleware

import (
	"net/http"

	"github.com/go-chi/render"

	apierrors "sheetpivot/internal/errors"
)

// writeProblem answers with an RFC 7807 body carrying the request's trace id.
func writeProblem(w http.ResponseWriter, r *http.Request, status int, problemType, detail string) {
	problem := apierrors.NewProblemDetails(status, problemType, http.StatusText(status), detail, r.URL.Path)
	if id := TraceID(r.Context()); id != "" {
		problem.WithExtension("trace_id", id)
	}
	render.Render(w, r, problem)
}
