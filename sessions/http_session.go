package sessions

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/Desarso/intentagent"
	_ "github.com/Desarso/intentagent/docs"
	"github.com/Desarso/intentagent/models"
	"github.com/Desarso/intentagent/rag"
	"github.com/Desarso/intentagent/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"
)

// Handler builds a gin engine with every route registered.
func (s *Server) Handler() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	s.RegisterRoutes(engine)
	return engine
}

// RegisterRoutes mounts the API on an existing engine.
func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.Use(s.requestID(), s.observe())

	engine.GET("/", s.handleLiveness)
	engine.POST("/chat", s.handleChat)
	engine.GET("/ws/chat", s.handleWebSocket)
	engine.GET("/stats", s.handleStats)
	engine.GET("/swagger/doc.json", s.handleSwagger)
	if s.Gatherer != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{})))
	}

	tenants := engine.Group("/tenants/:tenant")
	tenants.GET("/sessions", s.handleListSessions)
	tenants.GET("/sessions/:session/history", s.handleHistory)
	tenants.GET("/sessions/:session/traces", s.handleTraces)
	tenants.POST("/reindex", s.handleReindex)
}

// requestID tags the request with X-Request-ID, reusing a client supplied
// value, and threads it into the request context.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(intentagent.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		elapsed := time.Since(start)
		s.Metrics.ObserveRequest(c.Request.Method, endpoint, c.Writer.Status(), elapsed)
		s.Logger.Info().
			Str("request_id", c.GetString(requestIDKey)).
			Str("method", c.Request.Method).
			Str("path", endpoint).
			Int("status", c.Writer.Status()).
			Dur("duration", elapsed).
			Msg("request")
	}
}

func (s *Server) handleLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, models.StatusResponse{Status: LivenessStatus})
}

func (s *Server) handleChat(c *gin.Context) {
	var req models.Chat_Request
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	result, err := s.Agent.HandleMessage(c.Request.Context(), req.TenantID, req.SessionID, req.Message)
	if err != nil {
		status, msg := classifyError(err)
		s.Logger.Error().Err(err).Str("request_id", c.GetString(requestIDKey)).Int("status", status).Msg("chat turn failed")
		s.fail(c, status, msg)
		return
	}
	c.JSON(http.StatusOK, ChatResponse{Response: result})
}

// classifyError maps a turn failure to a status and a message safe to show
// clients. Provider errors never reach the response body.
func classifyError(err error) (int, string) {
	var exhausted *router.AllProvidersExhaustedError
	switch {
	case errors.Is(err, intentagent.ErrInvalidTurn):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &exhausted):
		return http.StatusBadGateway, "the language model is unavailable, please try again later"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (s *Server) handleStats(c *gin.Context) {
	stats := map[string]int64{}
	if s.Stats != nil {
		stats = s.Stats.Stats()
	}
	c.JSON(http.StatusOK, gin.H{"providers": stats})
}

func (s *Server) handleListSessions(c *gin.Context) {
	tenant := c.Param("tenant")
	list, err := s.Store.ListSessions(c.Request.Context(), tenant)
	if err != nil {
		s.Logger.Error().Err(err).Str("tenant_id", tenant).Msg("failed to list sessions")
		s.fail(c, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenant_id": tenant, "sessions": list})
}

func (s *Server) handleHistory(c *gin.Context) {
	tenant, session := c.Param("tenant"), c.Param("session")
	history, err := s.Store.GetHistory(c.Request.Context(), tenant, session)
	if err != nil {
		s.Logger.Error().Err(err).Str("tenant_id", tenant).Str("session_id", session).Msg("failed to load history")
		s.fail(c, http.StatusInternalServerError, "failed to load history")
		return
	}
	c.JSON(http.StatusOK, models.HistoryResponse{TenantID: tenant, SessionID: session, Messages: history})
}

func (s *Server) handleTraces(c *gin.Context) {
	if s.Traces == nil {
		s.fail(c, http.StatusNotFound, "tool tracing is not enabled")
		return
	}
	tenant, session := c.Param("tenant"), c.Param("session")
	traces, err := s.Traces.GetTracesBySession(c.Request.Context(), tenant, session)
	if err != nil {
		s.Logger.Error().Err(err).Str("tenant_id", tenant).Str("session_id", session).Msg("failed to load traces")
		s.fail(c, http.StatusInternalServerError, "failed to load traces")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenant_id": tenant, "session_id": session, "traces": traces})
}

func (s *Server) handleReindex(c *gin.Context) {
	if s.Reindexer == nil {
		s.fail(c, http.StatusNotFound, "retrieval is not enabled")
		return
	}
	tenant := c.Param("tenant")
	n, err := s.Reindexer.Reindex(c.Request.Context(), tenant)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"tenant_id": tenant, "documents": n})
	case errors.Is(err, rag.ErrInvalidTenant):
		s.fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, os.ErrNotExist):
		s.fail(c, http.StatusNotFound, "no knowledge file for tenant "+tenant)
	default:
		s.Logger.Error().Err(err).Str("tenant_id", tenant).Msg("reindex failed")
		s.fail(c, http.StatusInternalServerError, "reindex failed")
	}
}

func (s *Server) handleSwagger(c *gin.Context) {
	doc, err := swag.ReadDoc()
	if err != nil {
		s.fail(c, http.StatusNotFound, "api documentation unavailable")
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
}

func (s *Server) fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: msg, RequestID: c.GetString(requestIDKey)})
}
