package handler

import (
	"errors"
	"strconv"

	"go-retail-erp/internal/model"
	"go-retail-erp/internal/service"

	"github.com/gofiber/fiber/v2"
)

type RestockHandler struct {
	service service.RestockService
}

func NewRestockHandler(s service.RestockService) *RestockHandler {
	return &RestockHandler{service: s}
}

func (h *RestockHandler) Restock(c *fiber.Ctx) error {
	var req service.RestockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	log, err := h.service.Restock(&req, getActor(c))
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Restock recorded", "data": log})
}

func (h *RestockHandler) GetLogs(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "100"))

	logs, err := h.service.GetLogs(limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(logs)
}

func (h *RestockHandler) SaveTemplate(c *fiber.Ctx) error {
	var template model.RestockTemplate
	if err := c.BodyParser(&template); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if template.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Template name is required"})
	}

	if err := h.service.SaveTemplate(&template, getActor(c)); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Template saved", "data": template})
}

func (h *RestockHandler) GetTemplates(c *fiber.Ctx) error {
	templates, err := h.service.GetTemplates()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(templates)
}

func (h *RestockHandler) DeleteTemplate(c *fiber.Ctx) error {
	templateID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid template ID"})
	}

	if err := h.service.DeleteTemplate(templateID, getActor(c)); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Template deleted"})
}
