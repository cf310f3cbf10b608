package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/orgalife/storefront/internal/domain/product"
)

const maxProductFormBytes = 10 << 20

type productResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Price          int64     `json:"price"`
	WholesalePrice int64     `json:"wholesalePrice"`
	Category       string    `json:"category"`
	Image          string    `json:"image"`
	Stock          int       `json:"stock"`
	Description    string    `json:"description"`
	IsInSlider     bool      `json:"isInSlider"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (h *Handler) productToResponse(p *product.Product) productResponse {
	return productResponse{
		ID:             p.ID,
		Name:           p.Name,
		Price:          p.Price,
		WholesalePrice: p.WholesalePrice,
		Category:       p.Category,
		Image:          h.imageURL(p.Image),
		Stock:          p.Stock,
		Description:    p.Description,
		IsInSlider:     p.IsInSlider,
		CreatedAt:      p.CreatedAt,
	}
}

// ListProducts returns the full catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	resp := make([]productResponse, len(products))
	for i := range products {
		resp[i] = h.productToResponse(&products[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateProduct adds a catalog product from a multipart form. Numeric fields
// are parsed strictly; a malformed value rejects the request rather than
// silently defaulting.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxProductFormBytes); err != nil {
		writeError(w, http.StatusBadRequest, "multipart form expected")
		return
	}

	p := product.Product{
		ID:          uuid.New().String(),
		Name:        r.FormValue("name"),
		Category:    r.FormValue("category"),
		Description: r.FormValue("description"),
		CreatedAt:   time.Now().UTC(),
	}
	if p.Name == "" {
		writeError(w, http.StatusBadRequest, "name required")
		return
	}

	var err error
	if p.Price, err = parseInt64Field(r, "price", true); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if p.WholesalePrice, err = parseInt64Field(r, "wholesalePrice", false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	stock, err := parseInt64Field(r, "stock", false)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p.Stock = int(stock)
	if v := r.FormValue("isInSlider"); v != "" {
		if p.IsInSlider, err = strconv.ParseBool(v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid isInSlider")
			return
		}
	}

	if file, header, ferr := r.FormFile("image"); ferr == nil {
		name, serr := h.saveUpload(file, header)
		if serr != nil {
			internalError(w, r, serr)
			return
		}
		p.Image = name
	}

	if err := h.products.Create(r.Context(), &p); err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.productToResponse(&p))
}

// UpdateProduct applies a partial update. Only fields present in the form
// are changed, so an empty value still overwrites while an absent key does
// not.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxProductFormBytes); err != nil {
		writeError(w, http.StatusBadRequest, "multipart form expected")
		return
	}

	var upd product.Update
	if v, ok := formValue(r, "name"); ok {
		upd.Name = &v
	}
	if v, ok := formValue(r, "category"); ok {
		upd.Category = &v
	}
	if v, ok := formValue(r, "description"); ok {
		upd.Description = &v
	}
	if v, ok := formValue(r, "price"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid price")
			return
		}
		upd.Price = &n
	}
	if v, ok := formValue(r, "wholesalePrice"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid wholesalePrice")
			return
		}
		upd.WholesalePrice = &n
	}
	if v, ok := formValue(r, "stock"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid stock")
			return
		}
		upd.Stock = &n
	}
	if v, ok := formValue(r, "isInSlider"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid isInSlider")
			return
		}
		upd.IsInSlider = &b
	}

	if file, header, err := r.FormFile("image"); err == nil {
		name, serr := h.saveUpload(file, header)
		if serr != nil {
			internalError(w, r, serr)
			return
		}
		upd.Image = &name
	}

	p, err := h.products.Update(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.productToResponse(p))
}

// DeleteProduct removes a product from the catalog. Past orders keep their
// item snapshots.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// saveUpload writes an uploaded image into the upload directory under a
// collision-free name and returns the stored file name.
func (h *Handler) saveUpload(file multipart.File, header *multipart.FileHeader) (string, error) {
	defer func() { _ = file.Close() }()

	name := uuid.New().String() + filepath.Ext(header.Filename)
	dst, err := os.Create(filepath.Join(h.uploadDir, name))
	if err != nil {
		return "", errors.Wrap(err, "create upload file")
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, file); err != nil {
		return "", errors.Wrap(err, "write upload file")
	}
	return name, nil
}

func parseInt64Field(r *http.Request, key string, required bool) (int64, error) {
	v := r.FormValue(key)
	if v == "" {
		if required {
			return 0, errors.Errorf("%s required", key)
		}
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, errors.Errorf("invalid %s", key)
	}
	return n, nil
}

func formValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	vs, ok := r.MultipartForm.Value[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}
