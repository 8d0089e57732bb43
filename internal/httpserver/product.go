package httpserver

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/inventory/internal/logging"
	"github.com/Skotchmaster/inventory/internal/service"
	"github.com/Skotchmaster/inventory/internal/transport"
	"github.com/Skotchmaster/inventory/internal/util"
)

const imageField = "image"

type ProductHTTP struct {
	Svc *service.ProductService
}

// imageUpload returns the optional multipart image. The returned closer is nil when there is no file.
func imageUpload(c echo.Context, l *slog.Logger) (*service.ImageUpload, io.Closer, error) {
	fh, err := c.FormFile(imageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, nil
		}
		l.Warn("image_read_failed", "status", 400, "error", err)
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid image upload")
	}

	f, err := fh.Open()
	if err != nil {
		l.Error("image_open_failed", "status", 500, "error", err)
		return nil, nil, echo.NewHTTPError(http.StatusInternalServerError, "Image could not be uploaded")
	}

	contentType := fh.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &service.ImageUpload{
		FileName:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Body:        f,
	}, f, nil
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_product", err)
	}

	img, closer, err := imageUpload(c, l)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	prod, err := h.Svc.CreateProduct(ctx, user.ID, req, img)
	if err != nil {
		return fail(l, "create_product", err)
	}
	return c.JSON(http.StatusCreated, prod)
}

func (h *ProductHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	items, err := h.Svc.ListProducts(ctx, user.ID)
	if err != nil {
		return fail(l, "list_products", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get")

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	prod, err := h.Svc.GetProduct(ctx, user.ID, c.Param("id"))
	if err != nil {
		return fail(l, "get_product", err)
	}
	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch")

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "patch_product", err)
	}

	img, closer, err := imageUpload(c, l)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	prod, err := h.Svc.UpdateProduct(ctx, user.ID, c.Param("id"), req, img)
	if err != nil {
		return fail(l, "patch_product", err)
	}
	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteProduct(ctx, user.ID, c.Param("id")); err != nil {
		return fail(l, "delete_product", err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Product deleted."})
}

func (h *ProductHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	res, err := h.Svc.SearchProducts(ctx, user.ID, c.QueryParam("q"), page, size)
	if err != nil {
		return fail(l, "search_products", err)
	}
	if page < 1 {
		page = 1
	}

	total, limit := res.Total, int64(res.Limit)
	return c.JSON(http.StatusOK, transport.SearchResponse{
		Data: res.Items,
		Meta: transport.SearchMeta{
			Page:       page,
			Size:       res.Limit,
			Total:      total,
			TotalPages: (total + limit - 1) / limit,
			HasPrev:    page > 1,
			HasNext:    int64(res.Offset+res.Limit) < total,
		},
	})
}
