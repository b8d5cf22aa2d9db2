package controller

import (
	"errors"

	"devmate-be/internal/pkg/logger"
	"devmate-be/internal/pkg/serverutils"
	"devmate-be/internal/service"
	internalWS "devmate-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	GetHistory(ctx *fiber.Ctx) error
	ServeWs(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
	auth    service.IAuthService
	hub     *internalWS.Hub
	logger  logger.ILogger
}

func NewChatController(chat service.IChatService, auth service.IAuthService, hub *internalWS.Hub, log logger.ILogger) IChatController {
	return &chatController{
		service: chat,
		auth:    auth,
		hub:     hub,
		logger:  log,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	chat := r.Group("/chat")
	chat.Use(serverutils.JwtMiddleware)
	chat.Get("/:targetUserId", c.GetHistory)

	// WebSocket handshake authenticates itself; fiber middleware cannot run
	// after the connection is hijacked.
	r.Get("/ws", c.ServeWs)
}

func (c *chatController) GetHistory(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)

	targetId, err := uuid.Parse(ctx.Params("targetUserId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid user id"))
	}

	history, err := c.service.GetHistory(ctx.Context(), userId, targetId)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "User not found"))
		case errors.Is(err, service.ErrNotConnectedPair):
			return ctx.Status(fiber.StatusForbidden).JSON(serverutils.ErrorResponse(403, "Users are not connected"))
		default:
			return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
		}
	}

	return ctx.JSON(history)
}

// ServeWs authenticates the handshake and hands the connection to the hub.
func (c *chatController) ServeWs(ctx *fiber.Ctx) error {
	// Browsers send the session cookie on the upgrade request; query param and
	// Bearer header cover non-browser clients.
	tokenStr := ctx.Cookies("token")
	if tokenStr == "" {
		tokenStr = ctx.Query("token")
	}
	if tokenStr == "" {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token"})
	}

	claims, err := serverutils.ParseToken(tokenStr)
	if err != nil {
		c.logger.Warn("ChatController", "Invalid token in WS handshake", map[string]interface{}{"error": err.Error()})
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing user_id"})
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID format in token"})
	}

	// Resolve display names server side so frames never trust client identity.
	user, err := c.auth.GetUser(ctx.Context(), userID)
	if err != nil || user == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unknown user"})
	}

	if websocket.IsWebSocketUpgrade(ctx) {
		firstName, lastName := user.FirstName, user.LastName
		return websocket.New(func(conn *websocket.Conn) {
			c.logger.Info("ChatController", "Starting WebSocket session", map[string]interface{}{"user_id": userID})
			internalWS.ServeWs(c.hub, conn, userID, firstName, lastName)
			c.logger.Info("ChatController", "WebSocket session ended", map[string]interface{}{"user_id": userID})
		})(ctx)
	}
	return fiber.ErrUpgradeRequired
}
