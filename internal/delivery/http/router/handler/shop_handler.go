package handler

import (
	"log/slog"
	"net/http"

	deliverycontext "pointshop/internal/delivery/context"
	"pointshop/internal/delivery/http/response"
	"pointshop/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ShopHandler serves the shopper side of the catalog.
type ShopHandler struct {
	uc     usecase.ShopUsecase
	logger *slog.Logger
}

func NewShopHandler(uc usecase.ShopUsecase, logger *slog.Logger) *ShopHandler {
	return &ShopHandler{uc: uc, logger: logger}
}

// ListShops reports access and opening hours of every shop for the caller.
func (h *ShopHandler) ListShops(c echo.Context) error {
	statuses, err := h.uc.ShopStatuses(c.Request().Context(), deliverycontext.GetIdentity(c))
	if err != nil {
		return errors.WithStack(err)
	}

	out := make([]*shopStatusResponse, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, &shopStatusResponse{
			Shop:      s.Shop,
			Label:     s.Label,
			HasAccess: s.HasAccess,
			IsOpen:    s.IsOpen,
			OpensAt:   s.OpensAt,
			ClosesAt:  s.ClosesAt,
		})
	}

	return response.Success(c, http.StatusOK, out, "")
}

func (h *ShopHandler) Catalog(c echo.Context) error {
	products, err := h.uc.ShopCatalog(c.Request().Context(), deliverycontext.GetIdentity(c), c.Param("shop"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newProductsResponse(products), "")
}

func (h *ShopHandler) ProductDetail(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	product, err := h.uc.ProductDetail(c.Request().Context(), deliverycontext.GetIdentity(c), c.Param("shop"), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newProductResponse(product), "")
}
