package sessions

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/Desarso/intentagent"
	"github.com/Desarso/intentagent/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// handleWebSocket upgrades the connection and runs one turn per inbound
// JSON frame. Frames on one connection are handled in order.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	writer := &WebSocketWriter{
		Conn:   conn,
		Logger: s.Logger.With().Str("connection_id", c.GetString(requestIDKey)).Logger(),
	}
	writer.Logger.Info().Msg("websocket session started")
	s.runWebSocket(c.Request.Context(), conn, writer)
	writer.Logger.Info().Msg("websocket session ended")
}

func (s *Server) runWebSocket(ctx context.Context, conn *websocket.Conn, writer *WebSocketWriter) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				writer.Logger.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}

		requestID := uuid.NewString()
		var req models.Chat_Request
		if err := json.Unmarshal(data, &req); err != nil {
			if err := writer.WriteError("invalid request: "+err.Error(), requestID); err != nil {
				return
			}
			continue
		}
		if strings.TrimSpace(req.TenantID) == "" || strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.Message) == "" {
			if err := writer.WriteError(intentagent.ErrInvalidTurn.Error(), requestID); err != nil {
				return
			}
			continue
		}

		turnCtx := intentagent.WithRequestID(ctx, requestID)
		result, err := s.Agent.HandleMessage(turnCtx, req.TenantID, req.SessionID, req.Message)
		if err != nil {
			_, msg := classifyError(err)
			writer.Logger.Error().Err(err).Str("request_id", requestID).Msg("websocket turn failed")
			if err := writer.WriteError(msg, requestID); err != nil {
				return
			}
			continue
		}
		if err := writer.WriteResponse(ChatResponse{Response: result}); err != nil {
			writer.Logger.Warn().Err(err).Msg("websocket write failed")
			return
		}
	}
}
