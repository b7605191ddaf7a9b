package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ventas-api/internal/application/dto"
	"github.com/jhoicas/ventas-api/internal/application/inventory"
)

// DefaultLowStockThreshold umbral de stock bajo si no se indica ?threshold.
const DefaultLowStockThreshold = 5

// StockHandler maneja apertura, reposición y consulta del stock por tienda.
type StockHandler struct {
	uc       *inventory.StockUseCase
	validate *RequestValidator
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.StockUseCase, validate *RequestValidator) *StockHandler {
	return &StockHandler{uc: uc, validate: validate}
}

// Open godoc
// @Summary      Abrir stock de un producto en una tienda
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenStockRequest  true  "Producto, tienda y cantidad inicial"
// @Success      201   {object}  dto.StockEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock [post]
func (h *StockHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenStockRequest
	if err := h.validate.parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Open(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Restock godoc
// @Summary      Reponer stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RestockRequest  true  "Producto, tienda y unidades a sumar"
// @Success      200   {object}  dto.StockEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/restock [post]
func (h *StockHandler) Restock(c *fiber.Ctx) error {
	var in dto.RestockRequest
	if err := h.validate.parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Restock(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListByStore godoc
// @Summary      Stock de una tienda
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        store_id  path  string  true  "ID de la tienda"
// @Success      200       {array}  dto.StockEntryResponse
// @Failure      404       {object}  dto.ErrorResponse
// @Router       /api/stock/{store_id} [get]
func (h *StockHandler) ListByStore(c *fiber.Ctx) error {
	out, err := h.uc.ListByStore(c.UserContext(), c.Params("store_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Productos con stock bajo en una tienda
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        store_id   path   string  true   "ID de la tienda"
// @Param        threshold  query  int     false  "Umbral"  default(5)
// @Success      200        {array}  dto.StockEntryResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Router       /api/stock/{store_id}/low [get]
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	threshold := c.QueryInt("threshold", DefaultLowStockThreshold)
	out, err := h.uc.LowStock(c.UserContext(), c.Params("store_id"), threshold)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
