package http

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
)

// ListCasesHandler lists the user's compensation cases, newest first.
// GET /v1/compensation/cases
func ListCasesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 50)
		cases, err := deps.Compensations.ListByUser(c.Context(), currentUser(c), limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		page, pg := paginate(c, cases, 50, 100)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// GetCaseHandler returns one of the user's cases.
func GetCaseHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kase, err := deps.Compensations.GetByID(c.Context(), c.Params("id"), currentUser(c))
		if err != nil {
			if mapped, ok := errDomain(c, err); ok {
				return mapped
			}
			return errInternal(c, err.Error())
		}
		return c.JSON(kase)
	}
}

type submitCaseRequest struct {
	ClaimData json.RawMessage `json:"claim_data"`
}

// SubmitCaseHandler attaches the claim payload and moves the case to
// submitted.
// POST /v1/compensation/cases/:id/submit
func SubmitCaseHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req submitCaseRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		kase, err := deps.Compensations.Submit(c.Context(), c.Params("id"), currentUser(c), req.ClaimData)
		if err != nil {
			if mapped, ok := errDomain(c, err); ok {
				return mapped
			}
			return errInternal(c, err.Error())
		}
		return c.JSON(kase)
	}
}
