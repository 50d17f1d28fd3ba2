package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oskarlindgren/pendla/internal/core/domain"
	"github.com/oskarlindgren/pendla/internal/pkg/validate"
)

// ListNotificationsHandler lists the user's notifications, newest first.
// GET /v1/notifications?unread=true
func ListNotificationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		unreadOnly := c.QueryBool("unread", false)
		limit := c.QueryInt("limit", 50)

		list, err := deps.Notifications.List(c.Context(), currentUser(c), unreadOnly, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		page, pg := paginate(c, list, 50, 200)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// MarkNotificationReadHandler marks one notification as read.
// POST /v1/notifications/:id/read
func MarkNotificationReadHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Notifications.MarkRead(c.Context(), c.Params("id"), currentUser(c)); err != nil {
			if mapped, ok := errDomain(c, err); ok {
				return mapped
			}
			return errInternal(c, err.Error())
		}
		return c.SendStatus(204)
	}
}

// MarkAllNotificationsReadHandler marks every unread notification as read.
// POST /v1/notifications/read-all
func MarkAllNotificationsReadHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Notifications.MarkAllRead(c.Context(), currentUser(c)); err != nil {
			return errInternal(c, err.Error())
		}
		return c.SendStatus(204)
	}
}

type pushSubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
	P256DH   string `json:"p256dh" validate:"required"`
	Auth     string `json:"auth" validate:"required"`
}

// CreatePushSubscriptionHandler registers a Web Push endpoint.
// POST /v1/push/subscriptions
func CreatePushSubscriptionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req pushSubscribeRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return errBadRequest(c, err.Error())
		}

		sub := &domain.PushSubscription{
			UserID:   currentUser(c),
			Endpoint: req.Endpoint,
			P256DH:   req.P256DH,
			Auth:     req.Auth,
		}
		if err := deps.Push.Create(c.Context(), sub); err != nil {
			return errInternal(c, err.Error())
		}
		return c.Status(201).JSON(sub)
	}
}

// DeletePushSubscriptionHandler removes a Web Push registration.
// DELETE /v1/push/subscriptions/:id
func DeletePushSubscriptionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Push.Delete(c.Context(), c.Params("id"), currentUser(c)); err != nil {
			if mapped, ok := errDomain(c, err); ok {
				return mapped
			}
			return errInternal(c, err.Error())
		}
		return c.SendStatus(204)
	}
}
