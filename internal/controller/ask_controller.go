package controller

import (
	"context"
	"time"

	"cdc-educa-be/internal/dto"
	"cdc-educa-be/internal/pkg/serverutils"
	"cdc-educa-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type IAskController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type askController struct {
	askService service.IAskService
}

func NewAskController(askService service.IAskService) IAskController {
	return &askController{
		askService: askService,
	}
}

func (c *askController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ask/v1")
	h.Post("", c.Ask)
	h.Get("health", c.Health)

	h.Use("stream", func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	h.Get("stream", websocket.New(c.stream))
}

func (c *askController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.askService.Ask(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Answer generated", res))
}

func (c *askController) Health(ctx *fiber.Ctx) error {
	res, err := c.askService.Health(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	if res.Status != "ok" {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.SuccessResponse("Corpus degraded", res))
	}
	return ctx.JSON(serverutils.SuccessResponse("Service healthy", res))
}

const streamChunkSize = 120 // runes per summary chunk

// stream answers one question over a websocket: the summary is sent in
// chunks as it would render, followed by a final frame with the full
// response. One question per connection.
func (c *askController) stream(conn *websocket.Conn) {
	defer conn.Close()

	var req dto.StreamRequest
	if err := conn.ReadJSON(&req); err != nil {
		_ = conn.WriteJSON(dto.StreamFrame{Type: "error", Data: "invalid request frame"})
		return
	}
	if req.Query == "" {
		_ = conn.WriteJSON(dto.StreamFrame{Type: "error", Data: "query is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res, err := c.askService.Ask(ctx, &dto.AskRequest{Query: req.Query, K: req.K})
	if err != nil {
		_ = conn.WriteJSON(dto.StreamFrame{Type: "error", Data: err.Error()})
		return
	}

	summary := []rune(res.Blocks.Summary)
	for start := 0; start < len(summary); start += streamChunkSize {
		end := start + streamChunkSize
		if end > len(summary) {
			end = len(summary)
		}
		if err := conn.WriteJSON(dto.StreamFrame{Type: "chunk", Data: string(summary[start:end])}); err != nil {
			return
		}
	}

	_ = conn.WriteJSON(dto.StreamFrame{Type: "result", Data: res})
}
