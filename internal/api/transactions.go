package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tesoro-dev/tesoro/internal/importer"
	"github.com/tesoro-dev/tesoro/internal/model"
	"github.com/tesoro-dev/tesoro/internal/split"
)

func (h *handler) mirror(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req struct {
		TargetAccountID uuid.UUID `json:"target_account_id"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.TargetAccountID == uuid.Nil {
		return model.Invalid("target_account_id", "is required")
	}
	res, err := h.Transfers.Mirror(c.UserContext(), ownerOf(c), id, req.TargetAccountID)
	if err != nil {
		return err
	}
	return ok(c, res)
}

func (h *handler) transferCandidates(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	txns, err := h.Transfers.Candidates(c.UserContext(), ownerOf(c), id)
	if err != nil {
		return err
	}
	return ok(c, txns)
}

func (h *handler) link(c *fiber.Ctx) error {
	var req struct {
		TransactionID uuid.UUID `json:"transaction_id"`
		CounterpartID uuid.UUID `json:"counterpart_id"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.Transfers.Link(c.UserContext(), ownerOf(c), req.TransactionID, req.CounterpartID); err != nil {
		return err
	}
	return ok(c, nil)
}

func (h *handler) unlink(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.Transfers.Unlink(c.UserContext(), ownerOf(c), id); err != nil {
		return err
	}
	return ok(c, nil)
}

func (h *handler) listSplits(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	splits, err := h.Splits.Splits(c.UserContext(), ownerOf(c), id)
	if err != nil {
		return err
	}
	return ok(c, splits)
}

func (h *handler) setSplits(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req struct {
		Lines []split.Line `json:"lines"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	splits, err := h.Splits.Split(c.UserContext(), ownerOf(c), id, req.Lines)
	if err != nil {
		return err
	}
	return ok(c, splits)
}

func (h *handler) removeSplits(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.Splits.Remove(c.UserContext(), ownerOf(c), id); err != nil {
		return err
	}
	return ok(c, nil)
}

func (h *handler) orphans(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	txns, err := h.Splits.Orphans(c.UserContext(), ownerOf(c), id)
	if err != nil {
		return err
	}
	return ok(c, txns)
}

func (h *handler) linkOrphans(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req struct {
		TransactionIDs []uuid.UUID `json:"transaction_ids"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	n, err := h.Splits.LinkOrphans(c.UserContext(), ownerOf(c), id, req.TransactionIDs)
	if err != nil {
		return err
	}
	return ok(c, fiber.Map{"linked": n})
}

func (h *handler) createChild(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req struct {
		Date       string          `json:"date"`
		Concept    string          `json:"concept"`
		Amount     decimal.Decimal `json:"amount"`
		CategoryID *uuid.UUID      `json:"category_id"`
		Notes      string          `json:"notes"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	var date time.Time
	if strings.TrimSpace(req.Date) != "" {
		date, err = importer.NormalizeDate(req.Date)
		if err != nil {
			return model.Invalid("date", "%s", err.Error())
		}
	}
	child, err := h.Splits.CreateChild(c.UserContext(), ownerOf(c), id, split.ChildInput{
		Date:       date,
		Concept:    req.Concept,
		Amount:     req.Amount,
		CategoryID: req.CategoryID,
		Notes:      req.Notes,
	})
	if err != nil {
		return err
	}
	return created(c, child)
}

func (h *handler) justification(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	j, err := h.Splits.Status(c.UserContext(), ownerOf(c), id)
	if err != nil {
		return err
	}
	return ok(c, j)
}
