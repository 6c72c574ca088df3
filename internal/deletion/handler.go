package deletion

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/musika08/Inventory-Pro/internal/auth"
	"github.com/musika08/Inventory-Pro/internal/database"
	"github.com/musika08/Inventory-Pro/internal/ledger"
	"github.com/musika08/Inventory-Pro/internal/models"
)

// HandleDelete is the shared endpoint body behind every ledger's DELETE
// route: immediate removal for admins, pending request for staff.
func HandleDelete(c *fiber.Ctx, actor auth.Actor, entityType string, entityID uint) error {
	if actor.Privileged() {
		if err := DeleteNow(actor, entityType, entityID); err != nil {
			if errors.Is(err, ledger.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Row not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot delete row")
		}
		return c.JSON(fiber.Map{"message": "Row removed"})
	}

	req, err := RequestDeletion(actor, entityType, entityID)
	if err != nil {
		if errors.Is(err, ledger.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Row not found")
		}
		if errors.Is(err, ledger.ErrPendingDeletion) {
			return fiber.NewError(fiber.StatusConflict, "A deletion request for this row is already pending")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Cannot create deletion request")
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message":    "Deletion blocked, pending approval",
		"request_id": req.ID,
	})
}

type DeletionRequestResponse struct {
	ID          uint                 `json:"id"`
	RequestedBy string               `json:"requested_by"`
	EntityType  string               `json:"entity_type"`
	EntityID    uint                 `json:"entity_id"`
	Snapshot    string               `json:"snapshot"`
	State       models.DeletionState `json:"state"`
	ResolvedBy  string               `json:"resolved_by"`
	CreatedAt   string               `json:"created_at"`
}

// GET /api/admin/deletion-requests?state=Pending
func ListDeletionRequestsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.DeletionRequest{})
		if state := c.Query("state"); state != "" {
			dbq = dbq.Where("state = ?", state)
		}

		var reqs []models.DeletionRequest
		if err := dbq.Order("created_at DESC, id DESC").Find(&reqs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot list deletion requests")
		}

		resp := make([]DeletionRequestResponse, 0, len(reqs))
		for _, r := range reqs {
			resp = append(resp, DeletionRequestResponse{
				ID:          r.ID,
				RequestedBy: r.RequestedBy,
				EntityType:  r.EntityType,
				EntityID:    r.EntityID,
				Snapshot:    r.Snapshot,
				State:       r.State,
				ResolvedBy:  r.ResolvedBy,
				CreatedAt:   r.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		return c.JSON(resp)
	}
}

// POST /api/admin/deletion-requests/:id/approve
func ApproveDeletionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return resolveRequest(c, Approve, "Request approved, row removed")
	}
}

// POST /api/admin/deletion-requests/:id/reject
func RejectDeletionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return resolveRequest(c, Reject, "Request rejected, row kept")
	}
}

func resolveRequest(c *fiber.Ctx, resolve func(auth.Actor, uint) error, okMessage string) error {
	var id uint
	if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request id")
	}

	actor, err := auth.ActorFromCtx(c)
	if err != nil {
		return err
	}

	if err := resolve(actor, id); err != nil {
		switch {
		case errors.Is(err, ledger.ErrForbidden):
			return fiber.NewError(fiber.StatusForbidden, "Only admins can resolve deletion requests")
		case errors.Is(err, ledger.ErrRecordNotFound):
			return fiber.NewError(fiber.StatusNotFound, "Deletion request not found")
		case errors.Is(err, ledger.ErrValidation):
			return fiber.NewError(fiber.StatusConflict, err.Error())
		default:
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot resolve deletion request")
		}
	}

	return c.JSON(fiber.Map{"message": okMessage})
}
