package handlers

import (
	"github.com/gin-gonic/gin"

	"stocktrail/internal/core/apperror"
	"stocktrail/internal/core/id"
	"stocktrail/internal/core/types"
	"stocktrail/internal/domain/catalog"
	"stocktrail/internal/infrastructure/http/v1/dto"
)

// CatalogHandler serves the product catalog.
type CatalogHandler struct {
	*BaseHandler
	service *catalog.Service
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(service *catalog.Service) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// Create handles POST /products.
func (h *CatalogHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := req.ToModel()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), product); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product.ID.String())
}

// Update handles PUT /products/:id.
func (h *CatalogHandler) Update(c *gin.Context) {
	productID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.HandleError(c, apperror.NewValidation("invalid product id"))
		return
	}

	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	price, err := types.NewMoneyFromString(req.Price)
	if err != nil {
		h.HandleError(c, apperror.NewValidation("invalid price").WithDetail("field", "price"))
		return
	}

	product, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	product.Name = req.Name
	product.Category = req.Category
	product.Price = price
	product.Active = *req.Active

	if err := h.service.Update(c.Request.Context(), product); err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.FromProduct(product))
}

// Get handles GET /products/:id.
func (h *CatalogHandler) Get(c *gin.Context) {
	productID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.HandleError(c, apperror.NewValidation("invalid product id"))
		return
	}

	product, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.FromProduct(product))
}

// List handles GET /products.
func (h *CatalogHandler) List(c *gin.Context) {
	var query dto.ListProductsQuery
	if !h.BindQuery(c, &query) {
		return
	}
	query.Defaults()

	products, err := h.service.List(c.Request.Context(), catalog.ListFilter{
		Category:   query.Category,
		Search:     query.Search,
		OnlyActive: query.Active,
		Limit:      query.PageSize,
		Offset:     query.Offset(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, dto.FromProduct(&products[i]))
	}
	h.OK(c, gin.H{"items": items, "page": query.Page, "pageSize": query.PageSize})
}
