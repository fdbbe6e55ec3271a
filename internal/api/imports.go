package api

import (
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/tesoro-dev/tesoro/internal/importer"
	"github.com/tesoro-dev/tesoro/internal/model"
)

func formBool(c *fiber.Ctx, key string) bool {
	v := strings.TrimSpace(c.FormValue(key))
	if v == "on" {
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}

// formMapping reads an inline column mapping from a multipart form. It
// returns nil when the form names no columns.
func formMapping(c *fiber.Ctx) *model.ColumnMapping {
	m := model.ColumnMapping{
		Delimiter:     c.FormValue("delimiter"),
		DateColumn:    c.FormValue("date_column"),
		ConceptColumn: c.FormValue("concept_column"),
		AmountColumn:  c.FormValue("amount_column"),
		ChargeColumn:  c.FormValue("charge_column"),
		CreditColumn:  c.FormValue("credit_column"),
		SignColumn:    c.FormValue("sign_column"),
		BalanceColumn: c.FormValue("balance_column"),
		InvertSign:    formBool(c, "invert_sign"),
	}
	if m.DateColumn == "" && m.ConceptColumn == "" && m.AmountColumn == "" &&
		m.ChargeColumn == "" && m.CreditColumn == "" {
		return nil
	}
	return &m
}

func (h *handler) importStatement(c *fiber.Ctx) error {
	accountID, err := paramID(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return model.Invalid("file", "is required")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	req := importer.Request{
		Owner:        ownerOf(c),
		AccountID:    accountID,
		Filename:     fh.Filename,
		Content:      content,
		Mapping:      formMapping(c),
		SaveTemplate: formBool(c, "save_template"),
		TemplateName: c.FormValue("template_name"),
	}
	if raw := strings.TrimSpace(c.FormValue("template_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return model.Invalid("template_id", "invalid id %q", raw)
		}
		req.TemplateID = &id
	}

	res, err := h.Importer.Import(c.UserContext(), req)
	if err != nil {
		return err
	}
	return created(c, res)
}

func (h *handler) listImports(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	batches, err := h.Importer.ListBatches(c.UserContext(), ownerOf(c), id)
	if err != nil {
		return err
	}
	return ok(c, batches)
}

func (h *handler) undoImport(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	n, err := h.Importer.UndoBatch(c.UserContext(), ownerOf(c), id)
	if err != nil {
		return err
	}
	return ok(c, fiber.Map{"removed": n})
}

type templateRequest struct {
	Name string `json:"name"`
	model.ColumnMapping
}

func (h *handler) listTemplates(c *fiber.Ctx) error {
	tpls, err := h.Importer.Templates(c.UserContext(), ownerOf(c))
	if err != nil {
		return err
	}
	return ok(c, tpls)
}

func (h *handler) createTemplate(c *fiber.Ctx) error {
	var req templateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	tpl, err := h.Importer.CreateTemplate(c.UserContext(), ownerOf(c), req.Name, req.ColumnMapping)
	if err != nil {
		return err
	}
	return created(c, tpl)
}

func (h *handler) updateTemplate(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req templateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	tpl, err := h.Importer.UpdateTemplate(c.UserContext(), ownerOf(c), id, req.Name, req.ColumnMapping)
	if err != nil {
		return err
	}
	return ok(c, tpl)
}

func (h *handler) deleteTemplate(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.Importer.DeleteTemplate(c.UserContext(), ownerOf(c), id); err != nil {
		return err
	}
	return ok(c, nil)
}
