package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ventas-api/internal/application/dto"
	"github.com/jhoicas/ventas-api/internal/application/sales"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/sale"
)

// SaleHandler expone el motor de ventas y la boleta en PDF.
type SaleHandler struct {
	uc       *sales.SaleUseCase
	pdf      *sales.PDFUseCase
	validate *RequestValidator
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sales.SaleUseCase, pdf *sales.PDFUseCase, validate *RequestValidator) *SaleHandler {
	return &SaleHandler{uc: uc, pdf: pdf, validate: validate}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Descuenta stock de la tienda y registra la venta en una sola transacción.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                 false  "Clave de idempotencia"
// @Param        body             body    dto.CreateSaleRequest  true   "Tienda, tipo de documento y líneas"
// @Success      201              {object}  dto.SaleResponse
// @Failure      400              {object}  dto.ErrorResponse
// @Failure      409              {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := h.validate.parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), sales.CreateSaleInput{
		StoreID:      in.StoreID,
		UserID:       GetUserID(c),
		DocumentType: in.DocumentType,
		Items:        toRawLines(in.Items),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSaleResponse(out))
}

// Update godoc
// @Summary      Editar venta
// @Description  Reemplaza las líneas de una venta activa; devuelve y vuelve a descontar el stock.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la venta"
// @Param        body  body  dto.UpdateSaleRequest  true  "Nuevas líneas"
// @Success      200   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [put]
func (h *SaleHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateSaleRequest
	if err := h.validate.parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), sales.UpdateSaleInput{
		StoreID:      in.StoreID,
		DocumentType: in.DocumentType,
		Items:        toRawLines(in.Items),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toSaleResponse(out))
}

// Void godoc
// @Summary      Anular venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/anular [post]
func (h *SaleHandler) Void(c *fiber.Ctx) error {
	out, err := h.uc.Void(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toSaleResponse(out))
}

// GetByID godoc
// @Summary      Obtener venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toSaleResponse(out))
}

// List godoc
// @Summary      Listar ventas activas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        store_id  query  string  false  "Filtrar por tienda"
// @Param        limit     query  int     false  "Límite"  default(50)
// @Param        offset    query  int     false  "Offset"  default(0)
// @Success      200       {object}  dto.SaleListResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	page, err := h.uc.List(c.UserContext(), sales.ListSalesInput{
		StoreID: c.Query("store_id"),
		Limit:   c.QueryInt("limit", 0),
		Offset:  c.QueryInt("offset", 0),
	})
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.SaleResponse, 0, len(page.Items))
	for _, s := range page.Items {
		items = append(items, toSaleResponse(s))
	}
	return c.JSON(dto.SaleListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: page.Total},
	})
}

// PDF godoc
// @Summary      Boleta de venta en PDF
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/pdf [get]
func (h *SaleHandler) PDF(c *fiber.Ctx) error {
	data, filename, err := h.pdf.DownloadSalePDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, filename))
	return c.Send(data)
}

func toRawLines(items []dto.SaleItemRequest) []sale.RawLine {
	out := make([]sale.RawLine, 0, len(items))
	for _, it := range items {
		out = append(out, sale.RawLine{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return out
}

func toSaleResponse(s *entity.Sale) dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, dto.SaleItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
		})
	}
	return dto.SaleResponse{
		ID:           s.ID,
		Number:       s.Number,
		StoreID:      s.StoreID,
		UserID:       s.UserID,
		DocumentType: s.DocumentType,
		Subtotal:     s.Subtotal,
		Total:        s.Total,
		Status:       s.Status,
		VoidedAt:     s.VoidedAt,
		CreatedAt:    s.CreatedAt,
		Items:        items,
	}
}
