package handler

import (
	"log/slog"
	"net/http"

	"pointshop/internal/delivery/http/response"
	domainerrors "pointshop/internal/domain/errors"
	"pointshop/internal/domain/service"
	"pointshop/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// CatalogHandler serves back office product and variant management.
// Product writes take multipart or urlencoded forms so an image can travel
// with the fields.
type CatalogHandler struct {
	uc     usecase.CatalogUsecase
	logger *slog.Logger
}

func NewCatalogHandler(uc usecase.CatalogUsecase, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{uc: uc, logger: logger}
}

func (h *CatalogHandler) ListProducts(c echo.Context) error {
	groups, err := h.uc.ListProducts(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	out := make([]map[string]any, 0, len(groups))
	for _, g := range groups {
		out = append(out, map[string]any{
			"shop":     g.Shop,
			"products": newProductsResponse(g.Products),
		})
	}

	return response.Success(c, http.StatusOK, out, "")
}

func (h *CatalogHandler) CreateProduct(c echo.Context) error {
	position, err := formInt(c, "position")
	if err != nil {
		return err
	}

	image, closeImage, err := formImage(c)
	if err != nil {
		return err
	}
	defer closeImage()

	product, err := h.uc.CreateProduct(c.Request().Context(), usecase.ProductInput{
		Shop:        c.FormValue("shop"),
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Position:    position,
		Active:      formBool(c, "active"),
		VariantsRaw: c.FormValue("variants"),
		Image:       image,
		ImageURL:    c.FormValue("image_url"),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, newProductResponse(product), "Product created")
}

// UpdateProduct replaces the editable fields. The image changes only when a
// file or an image_url field is sent.
func (h *CatalogHandler) UpdateProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	position, err := formInt(c, "position")
	if err != nil {
		return err
	}

	image, closeImage, err := formImage(c)
	if err != nil {
		return err
	}
	defer closeImage()

	input := usecase.ProductUpdateInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Position:    position,
		Active:      formBool(c, "active"),
		Image:       image,
	}
	if params, err := c.FormParams(); err == nil && params.Has("image_url") {
		url := params.Get("image_url")
		input.ImageURL = &url
	}

	product, err := h.uc.UpdateProduct(c.Request().Context(), id, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newProductResponse(product), "Product updated")
}

func (h *CatalogHandler) DeleteProductImage(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	product, err := h.uc.DeleteProductImage(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newProductResponse(product), "Image removed")
}

func (h *CatalogHandler) DeleteProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.DeleteProduct(c.Request().Context(), id); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Product deleted")
}

func (h *CatalogHandler) AddVariant(c echo.Context) error {
	productID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req variantRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	variant, err := h.uc.AddVariant(c.Request().Context(), productID, req.input())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, newVariantResponse(variant), "Variant added")
}

func (h *CatalogHandler) UpdateVariant(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req variantRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	variant, err := h.uc.UpdateVariant(c.Request().Context(), id, req.input())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newVariantResponse(variant), "Variant updated")
}

func (h *CatalogHandler) DeleteVariant(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.DeleteVariant(c.Request().Context(), id); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Variant deleted")
}

// formImage opens the "image" file part. A request without one yields a nil
// upload. The returned func closes the part.
func formImage(c echo.Context) (*service.ImageUpload, func(), error) {
	noop := func() {}

	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, domainerrors.ErrInvalidImage.WrapMessage(err.Error())
	}
	if fh.Filename == "" || fh.Size == 0 {
		return nil, noop, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, noop, errors.Wrap(err, "failed to open uploaded file")
	}

	return &service.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}
