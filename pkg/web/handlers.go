package web

import (
	"errors"
	"fmt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/teslashibe/restaurantia/pkg/call"
	"github.com/teslashibe/restaurantia/pkg/hub"
	"github.com/teslashibe/restaurantia/pkg/voice"
)

// ToolInfo describes an available tool
type ToolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// handleHealth reports liveness
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"sessions": s.SessionCount(),
	})
}

// handleListTools returns the tools every call exposes
func (s *Server) handleListTools(c *fiber.Ctx) error {
	ctrl := s.factory(call.Metadata{}, call.WithLogger(s.logger))
	tools := ctrl.Tools(c.UserContext())

	infos := make([]ToolInfo, 0, len(tools))
	for _, t := range tools {
		infos = append(infos, ToolInfo{Name: t.Name, Description: t.Description, Parameters: t.Parameters})
	}
	return c.JSON(infos)
}

// handleCreateCall opens a call. The body is the call metadata.
func (s *Server) handleCreateCall(c *fiber.Ctx) error {
	meta := call.ParseMetadata(string(c.Body()))
	id := uuid.NewString()

	ctrl := s.factory(meta,
		call.WithID(id),
		call.WithHangup(func() {
			s.AddEvent("hangup", id, "call ended")
		}),
	)

	reg := voice.NewRegistry(voice.WithLogger(s.logger), voice.WithMetrics(s.toolMetrics))
	if err := reg.Register(ctrl.Tools(s.ctx)...); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	s.sessionsMu.Lock()
	s.sessions[id] = &session{controller: ctrl, tools: reg}
	s.sessionsMu.Unlock()

	m := ctrl.Metadata()
	s.AddEvent("call", id, fmt.Sprintf("call started (language %s)", m.Language))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// handleListCalls returns all open sessions
func (s *Server) handleListCalls(c *fiber.Ctx) error {
	s.sessionsMu.RLock()
	ctrls := make([]*call.Controller, 0, len(s.sessions))
	for _, sess := range s.sessions {
		ctrls = append(ctrls, sess.controller)
	}
	s.sessionsMu.RUnlock()

	snaps := make([]call.Snapshot, 0, len(ctrls))
	for _, ctrl := range ctrls {
		snaps = append(snaps, ctrl.Snapshot())
	}

	return c.JSON(fiber.Map{
		"calls": snaps,
		"count": len(snaps),
	})
}

// handleGetCall returns one session
func (s *Server) handleGetCall(c *fiber.Ctx) error {
	sess, ok := s.session(c.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "call not found")
	}
	return c.JSON(sess.controller.Snapshot())
}

// handleDeleteCall drops a session
func (s *Server) handleDeleteCall(c *fiber.Ctx) error {
	id := c.Params("id")

	s.sessionsMu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.sessionsMu.Unlock()

	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "call not found")
	}
	s.AddEvent("call", id, "call deleted")
	return c.SendStatus(fiber.StatusNoContent)
}

// TriggerToolRequest is the request body for invoking a tool
type TriggerToolRequest struct {
	Args map[string]any `json:"args"`
}

// handleTriggerTool invokes a tool on a call
func (s *Server) handleTriggerTool(c *fiber.Ctx) error {
	id := c.Params("id")
	name := c.Params("name")

	sess, ok := s.session(id)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "call not found")
	}
	if sess.controller.Ended() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "call has ended"})
	}

	var req TriggerToolRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	res := sess.tools.Dispatch(voice.ToolCall{ID: uuid.NewString(), Name: name, Arguments: req.Args})
	if res.Error != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(res.Error, voice.ErrToolNotFound) {
			status = fiber.StatusNotFound
		}
		s.AddEvent("error", id, name+": "+res.Error.Error())
		return c.Status(status).JSON(fiber.Map{"error": res.Error.Error()})
	}

	s.AddEvent("tool", id, name+" → "+res.Result)

	return c.JSON(fiber.Map{
		"tool":   name,
		"result": res.Result,
		"ended":  sess.controller.Ended(),
	})
}

// handleGetEvents returns recent events
func (s *Server) handleGetEvents(c *fiber.Ctx) error {
	return c.JSON(s.Events())
}

// handleEventsWS streams events, starting with the buffered backlog
func (s *Server) handleEventsWS(c *websocket.Conn) {
	for _, entry := range s.Events() {
		if err := c.WriteJSON(entry); err != nil {
			return
		}
	}

	client := hub.NewClient(s.eventHub, c)
	if client == nil {
		return
	}
	client.Run(s.ctx)
}

func (s *Server) session(id string) (*session, bool) {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}
