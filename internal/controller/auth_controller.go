package controller

import (
	"errors"
	"time"

	"devmate-be/internal/dto"
	"devmate-be/internal/entity"
	"devmate-be/internal/pkg/serverutils"
	"devmate-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Signup(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
}

type authController struct {
	service    service.IAuthService
	cookieName string
	tokenTTL   time.Duration
}

func NewAuthController(service service.IAuthService, cookieName string, tokenTTL time.Duration) IAuthController {
	return &authController{
		service:    service,
		cookieName: cookieName,
		tokenTTL:   tokenTTL,
	}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	r.Post("/signup", c.Signup)
	r.Post("/login", c.Login)
	r.Post("/logout", c.Logout)
}

func (c *authController) Signup(ctx *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	result, err := c.service.Signup(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	c.setSessionCookie(ctx, result.Token)
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Signup successful", toUserResponse(result.User)))
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	result, err := c.service.Login(ctx.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Invalid credentials"))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	c.setSessionCookie(ctx, result.Token)
	return ctx.JSON(serverutils.SuccessResponse("Login successful", toUserResponse(result.User)))
}

func (c *authController) Logout(ctx *fiber.Ctx) error {
	ctx.Cookie(&fiber.Cookie{
		Name:     c.cookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})
	return ctx.JSON(serverutils.SuccessResponse[any]("Logout successful", nil))
}

func (c *authController) setSessionCookie(ctx *fiber.Ctx, token string) {
	ctx.Cookie(&fiber.Cookie{
		Name:     c.cookieName,
		Value:    token,
		Expires:  time.Now().Add(c.tokenTTL),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})
}

func toUserResponse(user *entity.User) dto.UserResponse {
	res := dto.UserResponse{
		Id:        user.Id,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	}
	if user.PhotoURL != nil {
		res.PhotoURL = *user.PhotoURL
	}
	if user.About != nil {
		res.About = *user.About
	}
	return res
}
