package api

import (
	"bytes"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tesoro-dev/tesoro/internal/model"
)

type accountRequest struct {
	Name                string            `json:"name"`
	Type                model.AccountType `json:"type"`
	Currency            string            `json:"currency"`
	InitialBalance      decimal.Decimal   `json:"initial_balance"`
	AutoMirrorTransfers bool              `json:"auto_mirror_transfers"`
}

func (h *handler) listAccounts(c *fiber.Ctx) error {
	accts, err := h.Accounts.All(c.UserContext(), ownerOf(c))
	if err != nil {
		return err
	}
	return ok(c, accts)
}

func (h *handler) createAccount(c *fiber.Ctx) error {
	var req accountRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	acct, err := h.Accounts.Create(c.UserContext(), ownerOf(c), model.Account{
		Name:                req.Name,
		Type:                req.Type,
		Currency:            req.Currency,
		InitialBalance:      req.InitialBalance,
		AutoMirrorTransfers: req.AutoMirrorTransfers,
	})
	if err != nil {
		return err
	}
	return created(c, acct)
}

func (h *handler) getAccount(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	acct, err := h.Accounts.Get(c.UserContext(), ownerOf(c), id)
	if err != nil {
		return err
	}
	return ok(c, acct)
}

func (h *handler) deleteAccount(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.Accounts.Delete(c.UserContext(), ownerOf(c), id); err != nil {
		return err
	}
	return ok(c, nil)
}

func (h *handler) setAutoMirror(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.Accounts.SetAutoMirror(c.UserContext(), ownerOf(c), id, req.Enabled); err != nil {
		return err
	}
	return ok(c, nil)
}

func (h *handler) linkTemplate(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req struct {
		TemplateID uuid.UUID `json:"template_id"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.Importer.LinkTemplate(c.UserContext(), ownerOf(c), id, req.TemplateID); err != nil {
		return err
	}
	return ok(c, nil)
}

func (h *handler) recompute(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	acct, err := h.Accounts.Recompute(c.UserContext(), ownerOf(c), id)
	if err != nil {
		return err
	}
	return ok(c, acct)
}

func (h *handler) listTransactions(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	txns, err := h.Accounts.Transactions(c.UserContext(), ownerOf(c), id)
	if err != nil {
		return err
	}
	return ok(c, txns)
}

func (h *handler) exportStatement(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := h.Accounts.ExportStatement(c.UserContext(), ownerOf(c), id, &buf); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Attachment(id.String() + ".csv")
	return c.Send(buf.Bytes())
}
