package controller

import (
	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/pkg/serverutils"
	"ai-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	SignInAnonymous(ctx *fiber.Ctx) error
	Heartbeat(ctx *fiber.Ctx) error
}

type authController struct {
	authService service.IAuthService
}

func NewAuthController(authService service.IAuthService) IAuthController {
	return &authController{
		authService: authService,
	}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Post("/anonymous", c.SignInAnonymous)
	h.Post("/heartbeat", serverutils.JwtMiddleware, c.Heartbeat)
}

// SignInAnonymous issues a fresh identity and token. The browser calls
// this once and stores the token locally.
func (c *authController) SignInAnonymous(ctx *fiber.Ctx) error {
	// The body is optional; a bare POST signs in with defaults.
	var req dto.AnonymousSignInRequest
	_ = ctx.BodyParser(&req)

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.authService.SignInAnonymous(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Signed in anonymously", res))
}

func (c *authController) Heartbeat(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIDFromLocals(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	if err := c.authService.TouchLastSeen(ctx.Context(), userId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Heartbeat recorded", nil))
}
