package main

import (
	"errors"
	"log/slog"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"apimocker/store"
)

// Error bodies returned to clients.
const (
	msgNotFound      = "Not found"
	msgInvalidIDType = "Invalid ID type"
	msgInvalidBody   = "Invalid JSON body"
)

type handler struct {
	store  *store.Store
	logger *slog.Logger
}

func newHandler(st *store.Store, logger *slog.Logger) *handler {
	return &handler{store: st, logger: logger.With("component", componentHTTPServer)}
}

// param returns a path parameter with percent-escapes decoded. Routing runs on
// the raw path so an escaped slash stays inside a single segment.
func param(c *fiber.Ctx, key string) string {
	v := c.Params(key)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

// GET /api
func (h *handler) collections(c *fiber.Ctx) error {
	return c.JSON(h.store.Counts())
}

// GET /api/:collection
func (h *handler) list(c *fiber.Ctx) error {
	return c.JSON(h.store.List(param(c, "collection")))
}

// GET /api/:collection/:id
func (h *handler) getOne(c *fiber.Ctx) error {
	rec, err := h.store.Get(param(c, "collection"), param(c, "id"))
	if err != nil {
		return h.storeError(c, err)
	}
	return c.JSON(rec)
}

// POST /api/:collection
func (h *handler) create(c *fiber.Ctx) error {
	body, err := store.DecodeRecord(c.Body())
	if err != nil {
		return h.badBody(c, err)
	}
	rec := h.store.Create(param(c, "collection"), body)
	return c.Status(fiber.StatusCreated).JSON(rec)
}

// PUT /api/:collection/:id
func (h *handler) replace(c *fiber.Ctx) error {
	body, err := store.DecodeRecord(c.Body())
	if err != nil {
		return h.badBody(c, err)
	}
	rec, err := h.store.Replace(param(c, "collection"), param(c, "id"), body)
	if err != nil {
		return h.storeError(c, err)
	}
	return c.JSON(rec)
}

// PATCH /api/:collection/:id
func (h *handler) update(c *fiber.Ctx) error {
	patch, err := store.DecodeRecord(c.Body())
	if err != nil {
		return h.badBody(c, err)
	}
	rec, err := h.store.Update(param(c, "collection"), param(c, "id"), patch)
	if err != nil {
		return h.storeError(c, err)
	}
	return c.JSON(rec)
}

// DELETE /api/:collection/:id
func (h *handler) remove(c *fiber.Ctx) error {
	rec, err := h.store.Delete(param(c, "collection"), param(c, "id"))
	if err != nil {
		return h.storeError(c, err)
	}
	return c.JSON(rec)
}

// GET /openapi.json
func (h *handler) openapi(c *fiber.Ctx) error {
	return c.JSON(buildOpenAPI(h.store.Collections()))
}

func (h *handler) storeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msgNotFound})
	case errors.Is(err, store.ErrInvalidIDType):
		h.logger.Debug("replace rejected", "err", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgInvalidIDType})
	}
	return err
}

func (h *handler) badBody(c *fiber.Ctx, err error) error {
	h.logger.Debug("rejected request body", "path", c.Path(), "err", err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgInvalidBody})
}

// errorHandler renders every error that reaches fiber as a JSON body.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := err.Error()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
