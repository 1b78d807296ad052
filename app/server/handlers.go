package server

import (
	"snapsight/app/service/history"

	"github.com/gofiber/fiber/v2"
)

type analyzeRequest struct {
	Screenshot string `json:"screenshot"`
	TabURL     string `json:"tabUrl"`
}

func (s *Server) handleAnalyze(c *fiber.Ctx) error {
	var req analyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body",
		})
	}

	if req.Screenshot == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "screenshot is required",
		})
	}

	if err := s.analyzerSvc.Submit(req.Screenshot, req.TabURL); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"isProcessing": s.analyzerSvc.Processing(),
		"badge":        s.analyzerSvc.Badge(),
	})
}

func (s *Server) handleClearBadge(c *fiber.Ctx) error {
	s.analyzerSvc.ClearBadge()

	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleListResponses(c *fiber.Ctx) error {
	records, err := s.historySvc.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	if records == nil {
		records = []history.Record{}
	}

	return c.JSON(fiber.Map{"responses": records})
}

func (s *Server) handleRemoveResponse(c *fiber.Ctx) error {
	if err := s.historySvc.Remove(c.Params("id")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

// Clearing the archive also forgets the conversation, matching the
// "clear everything" action in the UI.
func (s *Server) handleClearResponses(c *fiber.Ctx) error {
	if err := s.historySvc.Clear(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	if err := s.chatSvc.Reset(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleResetChat(c *fiber.Ctx) error {
	if err := s.analyzerSvc.ResetChat(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{"success": true})
}
