package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/auth"
	"github.com/jhoicas/almacen-api/internal/application/dto"
)

// AuthHandler maneja registro, login y perfil.
type AuthHandler struct {
	uc *auth.AuthUseCase
}

// NewAuthHandler construye el handler.
func NewAuthHandler(uc *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Register crea un usuario nuevo.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := parseAndValidate(c, &in); err != nil {
		return err
	}
	user, err := h.uc.Register(in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login verifica credenciales y devuelve un JWT.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := parseAndValidate(c, &in); err != nil {
		return err
	}
	resp, err := h.uc.Login(in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// Profile devuelve el usuario autenticado.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	user, err := h.uc.GetProfile(GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(user)
}
