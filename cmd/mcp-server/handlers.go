package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	algebra "github.com/njchilds90/goalgebra"
	"github.com/njchilds90/goalgebra/internal/session"
)

const maxBodyBytes = 1 << 20 // 1 MiB

type Server struct {
	store  *session.Store
	logger *slog.Logger
}

func NewServer(store *session.Store, logger *slog.Logger) *Server {
	return &Server{store: store, logger: logger.With("source", "mcp_server")}
}

// RegisterHandlers mounts every endpoint on e.
func (s *Server) RegisterHandlers(e *echo.Echo) {
	e.POST("/tool", s.HandleTool)
	e.GET("/schema", s.HandleSchema)
	e.GET("/health", s.HandleHealth)

	e.POST("/sessions", s.HandleCreateSession)
	e.GET("/sessions/:id", s.HandleGetSession)
	e.POST("/sessions/:id/step", s.HandleStepSession)
	e.POST("/sessions/:id/run", s.HandleRunSession)
	e.POST("/sessions/:id/graft", s.HandleGraftSession)
	e.DELETE("/sessions/:id", s.HandleDeleteSession)
}

// decodeJSON reads exactly one JSON value from the request body into v.
// Oversized bodies, unknown fields and trailing data are rejected.
func decodeJSON(c echo.Context, v interface{}) error {
	r := c.Request()
	r.Body = http.MaxBytesReader(c.Response(), r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return err
	}
	// Ensure there's no trailing junk.
	if dec.More() {
		return fmt.Errorf("invalid JSON: trailing data")
	}
	return nil
}

// HandleTool executes a single tool call.
func (s *Server) HandleTool(c echo.Context) error {
	var req algebra.ToolRequest
	if err := decodeJSON(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	resp := algebra.HandleToolCall(req)
	if resp.Error != "" {
		s.logger.Debug("tool call failed", "tool", req.Tool, "err", resp.Error)
	}
	return c.JSON(http.StatusOK, resp)
}

// HandleSchema returns the tool schema for agent registration.
func (s *Server) HandleSchema(c echo.Context) error {
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, []byte(algebra.MCPToolSpec()))
}

func (s *Server) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":   "ok",
		"time":     time.Now().UTC().Format(time.RFC3339),
		"version":  versioninfo.Short(),
		"sessions": s.store.Len(),
	})
}

type exprRequest struct {
	Expr json.RawMessage `json:"expr"`
}

// treeFromRequest builds a new tree from {"expr": "..."} or
// {"expr": {...}}.
func treeFromRequest(c echo.Context) (*algebra.Tree, error) {
	var req exprRequest
	if err := decodeJSON(c, &req); err != nil {
		return nil, err
	}
	if len(req.Expr) == 0 {
		return nil, fmt.Errorf("missing expr")
	}
	var src string
	if err := json.Unmarshal(req.Expr, &src); err == nil {
		return algebra.Parse(src)
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(req.Expr, &obj); err != nil {
		return nil, fmt.Errorf("expr must be a string or an expression object")
	}
	return algebra.FromJSON(obj)
}

func (s *Server) HandleCreateSession(c echo.Context) error {
	tree, err := treeFromRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	snap, err := s.store.Create(tree)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, snap)
}

func (s *Server) HandleGetSession(c echo.Context) error {
	return s.sessionOp(c, s.store.Get)
}

func (s *Server) HandleStepSession(c echo.Context) error {
	return s.sessionOp(c, s.store.Step)
}

func (s *Server) HandleRunSession(c echo.Context) error {
	return s.sessionOp(c, s.store.Run)
}

func (s *Server) HandleGraftSession(c echo.Context) error {
	sub, err := treeFromRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	defer sub.Dispose()
	return s.sessionOp(c, func(id uuid.UUID) (session.Snapshot, error) {
		return s.store.Graft(id, sub)
	})
}

func (s *Server) HandleDeleteSession(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	if !s.store.Delete(id) {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "success"})
}

func (s *Server) sessionOp(c echo.Context, op func(uuid.UUID) (session.Snapshot, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	snap, err := op(id)
	if errors.Is(err, session.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}
