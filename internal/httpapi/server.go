package httpapi

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/net/websocket"

	"collector/internal/apperrors"
	"collector/internal/types"
	"collector/internal/validate"
)

// Server is the HTTP/WebSocket control plane described in spec §6.4. It
// is a thin layer over Registry: every handler either submits a job,
// reads its state, or cancels it.
type Server struct {
	registry *Registry
	limiter  *rateLimiter
	router   *mux.Router
}

// maxRequestBody caps a request body at 10 MiB, per spec §6.4.
const maxRequestBody = 10 << 20

// NewServer builds a Server with its routes wired, ready to be used as an
// http.Handler.
func NewServer() *Server {
	s := &Server{registry: NewRegistry(), limiter: newRateLimiter()}
	s.router = mux.NewRouter()
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.Use(s.rateLimitMiddleware)

	api.HandleFunc("/collect", s.handleCollect).Methods(http.MethodPost)
	api.HandleFunc("/progress/{job_id}", s.handleProgress).Methods(http.MethodGet)
	api.HandleFunc("/result/{job_id}", s.handleResult).Methods(http.MethodGet)
	api.HandleFunc("/status/{job_id}", s.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/job/{job_id}", s.handleDeleteJob).Methods(http.MethodDelete)
	api.HandleFunc("/jobs", s.handleListJobs).Methods(http.MethodGet)
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)
	api.Handle("/ws/progress/{job_id}", websocket.Handler(s.handleWebSocket))
}

// ServeHTTP lets Server be used directly with http.ListenAndServe.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// rateLimitMiddleware enforces the 100 req/60s per-client-IP budget
// (spec §6.4), returning 429 on excess.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !s.limiter.Allow(ip, time.Now()) {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// collectRequest mirrors the JSON config schema in spec §3.
type collectRequest struct {
	SourcePaths        []string      `json:"source_paths"`
	TargetPath         string        `json:"target_path"`
	Patterns           []patternJSON `json:"patterns"`
	OperationMode      string        `json:"operation_mode"`
	CreateArchive      bool          `json:"create_archive"`
	ArchiveFormat      string        `json:"archive_format"`
	ArchiveCompression string        `json:"archive_compression"`
	CollectSystemInfo  bool          `json:"collect_system_info"`
	EnableAuditLogging bool          `json:"enable_audit_logging"`
	AuditLogFile       string        `json:"audit_log_file"`
}

type patternJSON struct {
	Pattern string `json:"pattern"`
	Kind    string `json:"kind"`
}

func (req collectRequest) toConfig() types.CollectionConfig {
	patterns := make([]types.PatternSpec, len(req.Patterns))
	for i, p := range req.Patterns {
		patterns[i] = types.PatternSpec{Pattern: p.Pattern, Kind: types.PatternKind(p.Kind)}
	}
	return types.CollectionConfig{
		SourcePaths:        req.SourcePaths,
		TargetPath:         req.TargetPath,
		Patterns:           patterns,
		OperationMode:      types.OperationMode(req.OperationMode),
		CreateArchive:      req.CreateArchive,
		ArchiveFormat:      types.ArchiveFormat(req.ArchiveFormat),
		ArchiveCompression: types.ArchiveCompression(req.ArchiveCompression),
		CollectSystemInfo:  req.CollectSystemInfo,
		EnableAuditLogging: req.EnableAuditLogging,
		AuditLogFile:       req.AuditLogFile,
	}
}

func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req collectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if strings.Contains(err.Error(), "http: request body too large") {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "invalid request body"})
		return
	}

	cfg := req.toConfig()
	if err := validate.Config(cfg); err != nil {
		status := http.StatusUnprocessableEntity
		if kind := apperrors.KindOf(err); kind == apperrors.SecurityViolation || kind == apperrors.PathError {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	job := s.registry.Submit(cfg)
	writeJSON(w, http.StatusOK, map[string]string{"job_id": job.ID, "status": "started"})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	job, ok := s.registry.Get(mux.Vars(r)["job_id"])
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown job"})
		return
	}
	snap := job.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"job_id":     job.ID,
		"percentage": snap.Percentage(),
		"current":    snap.Current,
		"total":      snap.Total,
	})
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	job, ok := s.registry.Get(mux.Vars(r)["job_id"])
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown job"})
		return
	}

	status, result, errMsg, done := job.StatusAndResult()
	if !done {
		writeJSON(w, http.StatusAccepted, map[string]any{"job_id": job.ID, "status": StatusPending})
		return
	}

	body := map[string]any{"job_id": job.ID, "status": status, "results": result}
	if errMsg != "" {
		body["error"] = errMsg
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	job, ok := s.registry.Get(mux.Vars(r)["job_id"])
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown job"})
		return
	}
	status, _, _, _ := job.StatusAndResult()
	writeJSON(w, http.StatusOK, map[string]any{"job_id": job.ID, "status": status})
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["job_id"]
	if !s.registry.Delete(id) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown job"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"job_id": id, "status": "cancelled"})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.registry.List()
	out := make([]map[string]any, 0, len(jobs))
	for _, job := range jobs {
		status, _, _, _ := job.StatusAndResult()
		out = append(out, map[string]any{"job_id": job.ID, "status": status, "created_at": job.CreatedAt})
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": out})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	jobs := s.registry.List()
	counts := map[Status]int{}
	for _, job := range jobs {
		status, _, _, _ := job.StatusAndResult()
		counts[status]++
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"jobs_total":     len(jobs),
		"jobs_by_status": counts,
	})
}

// wsMessage is the minimal envelope the control plane exchanges over the
// progress WebSocket: a push-only progress record, plus a ping/pong
// keepalive pair from the client.
type wsMessage struct {
	Type string `json:"type"`
}

// handleWebSocket streams job's progress feed. Each flush notification
// (spec §4.6) produces one push; the client may additionally send
// {"type":"ping"} at any time and receive {"type":"pong"} back.
func (s *Server) handleWebSocket(ws *websocket.Conn) {
	defer ws.Close()

	req := ws.Request()
	jobID := mux.Vars(req)["job_id"]
	job, ok := s.registry.Get(jobID)
	if !ok {
		_ = websocket.JSON.Send(ws, map[string]string{"error": "unknown job"})
		return
	}

	ch, unsubscribe := job.subscribeWS()
	defer unsubscribe()

	incoming := make(chan wsMessage)
	go func() {
		for {
			var msg wsMessage
			if err := websocket.JSON.Receive(ws, &msg); err != nil {
				close(incoming)
				return
			}
			incoming <- msg
		}
	}()

	for {
		select {
		case snap, open := <-ch:
			if !open {
				return
			}
			if err := websocket.JSON.Send(ws, map[string]any{
				"job_id":       job.ID,
				"percentage":   snap.Percentage(),
				"current":      snap.Current,
				"total":        snap.Total,
				"current_file": snap.CurrentFile,
			}); err != nil {
				return
			}
		case msg, open := <-incoming:
			if !open {
				return
			}
			if msg.Type == "ping" {
				if err := websocket.JSON.Send(ws, wsMessage{Type: "pong"}); err != nil {
					return
				}
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
