package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (h *handler) listCategories(c *fiber.Ctx) error {
	cats, err := h.Categories.Categories(c.UserContext(), ownerOf(c))
	if err != nil {
		return err
	}
	return ok(c, cats)
}

func (h *handler) createCategory(c *fiber.Ctx) error {
	var req struct {
		Name     string     `json:"name"`
		Color    string     `json:"color"`
		Icon     string     `json:"icon"`
		ParentID *uuid.UUID `json:"parent_id"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	cat, err := h.Categories.CreateCategory(c.UserContext(), ownerOf(c), req.Name, req.Color, req.Icon, req.ParentID)
	if err != nil {
		return err
	}
	return created(c, cat)
}

func (h *handler) deleteCategory(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.Categories.DeleteCategory(c.UserContext(), ownerOf(c), id); err != nil {
		return err
	}
	return ok(c, nil)
}

func (h *handler) listRules(c *fiber.Ctx) error {
	rules, err := h.Categories.Rules(c.UserContext(), ownerOf(c))
	if err != nil {
		return err
	}
	return ok(c, rules)
}

func (h *handler) createRule(c *fiber.Ctx) error {
	var req struct {
		Pattern    string    `json:"pattern"`
		CategoryID uuid.UUID `json:"category_id"`
		Priority   int       `json:"priority"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	rule, err := h.Categories.CreateRule(c.UserContext(), ownerOf(c), req.Pattern, req.CategoryID, req.Priority)
	if err != nil {
		return err
	}
	return created(c, rule)
}

func (h *handler) deleteRule(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.Categories.DeleteRule(c.UserContext(), ownerOf(c), id); err != nil {
		return err
	}
	return ok(c, nil)
}

func (h *handler) applyRule(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	n, err := h.Categories.ApplyRule(c.UserContext(), ownerOf(c), id)
	if err != nil {
		return err
	}
	return ok(c, fiber.Map{"categorized": n})
}
