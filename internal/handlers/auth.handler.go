package handlers

import (
	"github.com/pawaovo/nfc-bracelet-fortune/internal/handlers/middleware"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/types"

	"github.com/gofiber/fiber/v2"
)

type loginRequest struct {
	Code  string `json:"code"`
	NfcID string `json:"nfcId"`
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respondError(c, types.ValidationError("invalid request body"))
	}
	if req.Code == "" {
		return h.respondError(c, types.ValidationError("code is required"))
	}

	result, err := h.auth.Login(c.UserContext(), req.Code, req.NfcID)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(types.OK(result))
}

type verifyNFCRequest struct {
	NfcID string `json:"nfcId"`
}

func (h *Handler) VerifyNFC(c *fiber.Ctx) error {
	var req verifyNFCRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respondError(c, types.ValidationError("invalid request body"))
	}

	user := middleware.UserFromContext(c)
	result, err := h.auth.VerifyNFCAccess(c.UserContext(), user, req.NfcID)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(types.OK(result))
}
