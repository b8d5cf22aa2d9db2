package controller

import (
	"errors"

	"devmate-be/internal/dto"
	"devmate-be/internal/entity"
	"devmate-be/internal/pkg/serverutils"
	"devmate-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IConnectionController interface {
	RegisterRoutes(r fiber.Router)
	SendRequest(ctx *fiber.Ctx) error
	ReviewRequest(ctx *fiber.Ctx) error
	PendingRequests(ctx *fiber.Ctx) error
	Connections(ctx *fiber.Ctx) error
}

type connectionController struct {
	service service.IConnectionService
}

func NewConnectionController(service service.IConnectionService) IConnectionController {
	return &connectionController{service: service}
}

func (c *connectionController) RegisterRoutes(r fiber.Router) {
	req := r.Group("/request")
	req.Use(serverutils.JwtMiddleware)
	req.Post("/send/:status/:userId", c.SendRequest)
	req.Post("/review/:status/:requestId", c.ReviewRequest)

	user := r.Group("/user")
	user.Use(serverutils.JwtMiddleware)
	user.Get("/requests/pending", c.PendingRequests)
	user.Get("/connections", c.Connections)
}

func (c *connectionController) SendRequest(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)

	params := dto.SendRequestParams{Status: ctx.Params("status")}
	if err := serverutils.ValidateRequest(params); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	targetId, err := uuid.Parse(ctx.Params("userId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid user id"))
	}

	request, err := c.service.SendRequest(ctx.Context(), userId, targetId, entity.ConnectionStatus(params.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "User not found"))
		case errors.Is(err, service.ErrSelfRequest), errors.Is(err, service.ErrDuplicateRequest):
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
		default:
			return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
		}
	}

	return ctx.JSON(serverutils.SuccessResponse("Request sent", fiber.Map{"_id": request.Id, "status": request.Status}))
}

func (c *connectionController) ReviewRequest(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)

	params := dto.ReviewRequestParams{Status: ctx.Params("status")}
	if err := serverutils.ValidateRequest(params); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	requestId, err := uuid.Parse(ctx.Params("requestId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request id"))
	}

	request, err := c.service.Review(ctx.Context(), userId, requestId, entity.ConnectionStatus(params.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Request not found"))
		case errors.Is(err, service.ErrNotRequestTarget):
			return ctx.Status(fiber.StatusForbidden).JSON(serverutils.ErrorResponse(403, "Not allowed to review this request"))
		case errors.Is(err, service.ErrRequestNotPending):
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Request already reviewed"))
		default:
			return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
		}
	}

	return ctx.JSON(serverutils.SuccessResponse("Request reviewed", fiber.Map{"_id": request.Id, "status": request.Status}))
}

func (c *connectionController) PendingRequests(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)

	pending, err := c.service.Pending(ctx.Context(), userId)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	resp := dto.PendingRequestListResponse{Data: make([]dto.PendingRequestResponse, 0, len(pending))}
	for _, p := range pending {
		resp.Data = append(resp.Data, dto.PendingRequestResponse{
			Id:        p.Request.Id,
			FromUser:  toUserResponse(p.FromUser),
			Status:    string(p.Request.Status),
			CreatedAt: p.Request.CreatedAt,
		})
	}
	return ctx.JSON(resp)
}

func (c *connectionController) Connections(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)

	peers, err := c.service.Connections(ctx.Context(), userId)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	resp := dto.ConnectionListResponse{Data: make([]dto.UserResponse, 0, len(peers))}
	for _, peer := range peers {
		resp.Data = append(resp.Data, toUserResponse(peer))
	}
	return ctx.JSON(resp)
}

func currentUserID(ctx *fiber.Ctx) uuid.UUID {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	return userId
}
