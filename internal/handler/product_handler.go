package handler

import (
	"context"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go-catalog-ws/internal/events"
	"go-catalog-ws/internal/model"
	"go-catalog-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// UploadsPrefix is the public path uploaded thumbnails are served from.
const UploadsPrefix = "/img"

const publishTimeout = 5 * time.Second

type ProductHandler struct {
	service   service.CatalogService
	publisher events.Publisher
	uploadDir string
}

func NewProductHandler(s service.CatalogService, publisher events.Publisher, uploadDir string) *ProductHandler {
	return &ProductHandler{service: s, publisher: publisher, uploadDir: uploadDir}
}

// Helper untuk ambil User Info dari JWT Context (set by auth middleware)
func getUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals("user_id").(string)
	if !ok {
		return "system"
	}
	return userID
}

// PaginatedResponse is the listing envelope returned by GET /api/products.
type PaginatedResponse struct {
	Status      string          `json:"status"`
	Payload     []model.Product `json:"payload"`
	TotalDocs   int64           `json:"totalDocs"`
	Limit       int             `json:"limit"`
	TotalPages  int             `json:"totalPages"`
	Page        int             `json:"page"`
	PrevPage    *int            `json:"prevPage"`
	NextPage    *int            `json:"nextPage"`
	HasPrevPage bool            `json:"hasPrevPage"`
	HasNextPage bool            `json:"hasNextPage"`
	PrevLink    *string         `json:"prevLink"`
	NextLink    *string         `json:"nextLink"`
}

// GetProducts lists active products
// GET /api/products?limit=10&page=1&sort=asc|desc&search=<type>
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	page := c.QueryInt("page", 1)
	sort := c.Query("sort")
	search := c.Query("search")

	result, err := h.service.GetAll(c.UserContext(),
		model.ProductFilter{Type: search},
		model.Pagination{Limit: limit, Page: page, Sort: model.ParseSortOrder(sort)},
	)
	if err != nil {
		return writeError(c, err)
	}

	link := func(p *int) *string {
		if p == nil {
			return nil
		}
		q := url.Values{}
		q.Set("limit", strconv.Itoa(limit))
		q.Set("page", strconv.Itoa(*p))
		if sort != "" {
			q.Set("sort", sort)
		}
		if search != "" {
			q.Set("search", search)
		}
		s := c.BaseURL() + c.Path() + "?" + q.Encode()
		return &s
	}

	return c.JSON(PaginatedResponse{
		Status:      "success",
		Payload:     result.Docs,
		TotalDocs:   result.TotalDocs,
		Limit:       result.Limit,
		TotalPages:  result.TotalPages,
		Page:        result.Page,
		PrevPage:    result.PrevPage,
		NextPage:    result.NextPage,
		HasPrevPage: result.HasPrevPage,
		HasNextPage: result.HasNextPage,
		PrevLink:    link(result.PrevPage),
		NextLink:    link(result.NextPage),
	})
}

// GetProduct returns one active product
// GET /api/products/:pid
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("pid"))
	if err != nil {
		return writeError(c, service.ErrNotFound)
	}

	product, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(product)
}

// CreateProduct accepts JSON or multipart/form-data with image files under "thumbnails"
// POST /api/products
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	var saved []string
	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid multipart form"})
		}
		saved, err = h.saveUploads(c, form.File["thumbnails"])
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		if len(saved) > 0 {
			product.Thumbnails = saved
		}
		if product.Thumbnail == "" {
			product.Thumbnail = model.DefaultThumbnail
			if len(saved) > 0 {
				product.Thumbnail = saved[0]
			}
		}
	}

	created, err := h.service.Add(c.UserContext(), &product, getUserID(c))
	if err != nil {
		h.removeUploads(saved)
		return writeError(c, err)
	}

	h.publish(events.New(events.ProductAdded, created.ID.String(), created))
	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": created})
}

// UpdateProduct applies a partial update; empty fields are ignored
// PUT /api/products/:pid
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("pid"))
	if err != nil {
		return writeError(c, service.ErrNotFound)
	}

	var patch model.Product
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&patch); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
		}
	}

	updated, err := h.service.Update(c.UserContext(), id, &patch, getUserID(c))
	if err != nil {
		return writeError(c, err)
	}

	h.publish(events.New(events.ProductUpdated, updated.ID.String(), updated))
	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

// DeleteProduct soft deletes a product and announces its code
// DELETE /api/products/:pid
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("pid"))
	if err != nil {
		return writeError(c, service.ErrNotFound)
	}

	deleted, err := h.service.Delete(c.UserContext(), id, getUserID(c))
	if err != nil {
		return writeError(c, err)
	}

	h.publish(events.New(events.ProductDeleted, deleted.ID.String(), deleted.Code))
	return c.JSON(fiber.Map{"message": "Product deleted", "data": deleted})
}

// publish is fire-and-forget: a failed notification never undoes the mutation.
func (h *ProductHandler) publish(evt events.Event) {
	if h.publisher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := h.publisher.Publish(ctx, evt); err != nil {
			log.Warnf("publish %s for %s: %v", evt.Name, evt.Key, err)
		}
	}()
}

func (h *ProductHandler) saveUploads(c *fiber.Ctx, files []*multipart.FileHeader) ([]string, error) {
	var paths []string
	for _, fh := range files {
		if ct := fh.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
			h.removeUploads(paths)
			return nil, fiber.NewError(fiber.StatusBadRequest, "thumbnails must be images")
		}
		name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
		if err := c.SaveFile(fh, filepath.Join(h.uploadDir, name)); err != nil {
			h.removeUploads(paths)
			return nil, err
		}
		paths = append(paths, UploadsPrefix+"/"+name)
	}
	return paths, nil
}

func (h *ProductHandler) removeUploads(paths []string) {
	for _, p := range paths {
		name := strings.TrimPrefix(p, UploadsPrefix+"/")
		if err := os.Remove(filepath.Join(h.uploadDir, name)); err != nil {
			log.Warnf("remove upload %s: %v", name, err)
		}
	}
}
