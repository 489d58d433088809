package http

import (
	"net/http"
	"strings"
	"time"

	"snapfind/internal/http/handlers"
	"snapfind/internal/http/metrics"
	httpmw "snapfind/internal/http/middleware"
)

type RouterDependencies struct {
	JobHandler        *handlers.JobHandler
	PipelineHandler   *handlers.PipelineHandler
	EnrollmentHandler *handlers.EnrollmentHandler
	BulkMoveHandler   *handlers.BulkMoveHandler
	SLAHandler        *handlers.SLAHandler
	InterviewHandler  *handlers.InterviewHandler
	MetricsHandler    *handlers.MetricsHandler
	Identity          *httpmw.Identity
	Metrics           *metrics.Collector
	RequestTimeout    time.Duration
}

type Router struct {
	deps RouterDependencies
}

const maxBodyBytes = 1 << 20

func NewRouter(deps RouterDependencies) http.Handler {
	return &Router{deps: deps}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	handler := httpmw.Chain(r.baseHandler(), httpmw.RequestID, httpmw.Logging, httpmw.BodyLimit(maxBodyBytes), httpmw.Recover, httpmw.Metrics(r.deps.Metrics), httpmw.Timeout(r.deps.RequestTimeout))
	handler.ServeHTTP(w, req)
}

func (r *Router) baseHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		path := req.URL.Path

		switch {
		case req.Method == http.MethodGet && path == "/health":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		case req.Method == http.MethodGet && path == "/metrics":
			r.deps.MetricsHandler.Get(w, req)
			return
		}

		if strings.HasPrefix(path, "/jobs") || strings.HasPrefix(path, "/stages") || strings.HasPrefix(path, "/pipeline-templates") || strings.HasPrefix(path, "/enrollments") || strings.HasPrefix(path, "/candidates") || strings.HasPrefix(path, "/sla") || strings.HasPrefix(path, "/interviews") {
			protected := r.deps.Identity.Require(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				r.handleProtected(w, req)
			}))
			protected.ServeHTTP(w, req)
			return
		}

		http.NotFound(w, req)
	})
}

func (r *Router) handleProtected(w http.ResponseWriter, req *http.Request) {
	path := req.URL.Path

	switch {
	case req.Method == http.MethodPost && path == "/jobs":
		r.deps.JobHandler.Create(w, req)
		return
	case req.Method == http.MethodGet && strings.HasPrefix(path, "/jobs/") && strings.HasSuffix(path, "/stages"):
		r.deps.PipelineHandler.ListStages(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/jobs/") && strings.HasSuffix(path, "/stages"):
		r.deps.PipelineHandler.InsertStage(w, req)
		return
	case req.Method == http.MethodGet && strings.HasPrefix(path, "/jobs/") && strings.HasSuffix(path, "/health"):
		r.deps.JobHandler.Health(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/jobs/") && strings.HasSuffix(path, "/candidates"):
		r.deps.EnrollmentHandler.Enroll(w, req)
		return
	case req.Method == http.MethodGet && strings.HasPrefix(path, "/jobs/"):
		r.deps.JobHandler.Get(w, req)
		return
	case req.Method == http.MethodPatch && strings.HasPrefix(path, "/stages/") && strings.HasSuffix(path, "/position"):
		r.deps.PipelineHandler.ReorderStage(w, req)
		return
	case req.Method == http.MethodPatch && strings.HasPrefix(path, "/stages/"):
		r.deps.PipelineHandler.RenameStage(w, req)
		return
	case req.Method == http.MethodDelete && strings.HasPrefix(path, "/stages/"):
		r.deps.PipelineHandler.DeleteStage(w, req)
		return
	case req.Method == http.MethodPost && path == "/pipeline-templates/import":
		r.deps.PipelineHandler.ImportTemplate(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/pipeline-templates/") && strings.HasSuffix(path, "/apply"):
		r.deps.PipelineHandler.ApplyTemplate(w, req)
		return
	case req.Method == http.MethodPatch && strings.HasPrefix(path, "/pipeline-templates/"):
		r.deps.PipelineHandler.UpdateTemplate(w, req)
		return
	case req.Method == http.MethodGet && strings.HasPrefix(path, "/pipeline-templates/"):
		r.deps.PipelineHandler.GetTemplate(w, req)
		return
	case req.Method == http.MethodPost && path == "/enrollments/bulk-move":
		r.deps.BulkMoveHandler.BulkMove(w, req)
		return
	case req.Method == http.MethodPatch && strings.HasPrefix(path, "/enrollments/") && strings.HasSuffix(path, "/stage"):
		r.deps.EnrollmentHandler.ChangeStage(w, req)
		return
	case req.Method == http.MethodGet && strings.HasPrefix(path, "/enrollments/") && strings.HasSuffix(path, "/history"):
		r.deps.EnrollmentHandler.History(w, req)
		return
	case req.Method == http.MethodGet && strings.HasPrefix(path, "/candidates/") && strings.HasSuffix(path, "/activities"):
		r.deps.EnrollmentHandler.Activities(w, req)
		return
	case req.Method == http.MethodGet && path == "/sla/breaches":
		r.deps.SLAHandler.CheckBreaches(w, req)
		return
	case req.Method == http.MethodPut && path == "/sla/thresholds":
		r.deps.SLAHandler.SetThreshold(w, req)
		return
	case req.Method == http.MethodGet && path == "/sla/thresholds":
		r.deps.SLAHandler.ListThresholds(w, req)
		return
	case req.Method == http.MethodPost && path == "/interviews":
		r.deps.InterviewHandler.Create(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/interviews/") && strings.HasSuffix(path, "/feedback"):
		r.deps.InterviewHandler.SubmitFeedback(w, req)
		return
	}

	http.NotFound(w, req)
}
