package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/stemsplitter/api/internal/model"
	"github.com/stemsplitter/api/internal/queue"
	"github.com/stemsplitter/api/internal/service"
	"github.com/stemsplitter/api/internal/storage"
	"github.com/stemsplitter/api/pkg/response"
)

const banner = "<h1>Music Separation REST API</h1><p>Use /apiv1/separate to upload MP3</p>"

type SeparateHandler struct {
	service   *service.SubmissionService
	validator *validator.Validate
}

func NewSeparateHandler(svc *service.SubmissionService, v *validator.Validate) *SeparateHandler {
	return &SeparateHandler{
		service:   svc,
		validator: v,
	}
}

// Banner handles GET /
func (h *SeparateHandler) Banner(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(banner)
}

// Separate handles POST /apiv1/separate
func (h *SeparateHandler) Separate(c *fiber.Ctx) error {
	var req model.SeparateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.BadRequest(c, "mp3 field is required")
	}

	result, err := h.service.Submit(c.Context(), &req)
	if err != nil {
		if errors.Is(err, queue.ErrUnavailable) {
			return response.ServiceUnavailable(c, err.Error())
		}
		return response.BadRequest(c, err.Error())
	}

	return response.OK(c, result)
}

// Queue handles GET /apiv1/queue
func (h *SeparateHandler) Queue(c *fiber.Ctx) error {
	ids, err := h.service.ListQueued(c.Context())
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	return response.OK(c, model.QueueResponse{Queue: ids})
}

// Track handles GET /apiv1/track/:songhash/:track
func (h *SeparateHandler) Track(c *fiber.Ctx) error {
	songHash := c.Params("songhash")
	track := model.Stem(c.Params("track"))

	data, err := h.service.GetTrack(c.Context(), songHash, track)
	if err != nil {
		if errors.Is(err, service.ErrStorageNotConfigured) {
			return response.NotImplemented(c, "object storage not configured")
		}
		if errors.Is(err, storage.ErrNotFound) {
			return response.NotFound(c, "track not found")
		}
		return response.BadRequest(c, err.Error())
	}

	c.Set(fiber.HeaderContentType, "audio/mpeg")
	return c.Send(data)
}

// Remove handles GET /apiv1/remove/:songhash
func (h *SeparateHandler) Remove(c *fiber.Ctx) error {
	return response.OK(c, h.service.Remove(c.Params("songhash")))
}
