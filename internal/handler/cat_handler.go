package handler

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"catapi/internal/auth"
	"catapi/internal/errors"
	"catapi/internal/geo"
	"catapi/internal/model"
	"catapi/internal/service"
	"catapi/internal/upload"
	"catapi/internal/validation"
)

// CatHandler serves the /cats endpoints.
type CatHandler struct {
	svc service.CatService
}

// NewCatHandler creates a cat handler.
func NewCatHandler(svc service.CatService) *CatHandler {
	return &CatHandler{svc: svc}
}

// IDParam addresses a single record.
type IDParam struct {
	ID string `param:"id" validate:"required,uuid"`
}

// AreaQuery holds the corners of a bounding box as "lat,lng".
type AreaQuery struct {
	TopRight   string `query:"topRight" validate:"required,latlng"`
	BottomLeft string `query:"bottomLeft" validate:"required,latlng"`
}

// CreateCatRequest is the body of POST /cats, as JSON or multipart form.
type CreateCatRequest struct {
	CatName   string        `json:"cat_name" validate:"required"`
	Weight    *float64      `json:"weight" validate:"required"`
	Filename  string        `json:"filename" validate:"required,min=3"`
	Birthdate string        `json:"birthdate" validate:"required,birthdate"`
	Location  *geo.Location `json:"location" validate:"omitempty"`
	Owner     string        `json:"owner" validate:"omitempty,uuid"`
}

// bindCreateCat decodes JSON bodies, or the form fields of multipart ones,
// and falls back to the uploaded file name before validating, so every
// violated field is reported together.
func bindCreateCat(c echo.Context, req *CreateCatRequest) error {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ct, echo.MIMEMultipartForm) {
		req.CatName = c.FormValue("cat_name")
		req.Filename = c.FormValue("filename")
		req.Birthdate = c.FormValue("birthdate")
		req.Owner = c.FormValue("owner")
		if w := c.FormValue("weight"); w != "" {
			weight, err := strconv.ParseFloat(w, 64)
			if err != nil {
				return errors.BadInput([]errors.FieldViolation{{Field: "weight", Message: "Must be a number"}})
			}
			req.Weight = &weight
		}
	} else if err := c.Bind(req); err != nil {
		return errors.BadRequest("invalid request body")
	}

	if req.Filename == "" {
		req.Filename = upload.From(c).Filename
	}
	return c.Validate(req)
}

// UpdateCatRequest is the body of PUT /cats/:id. Ownership is not writable.
type UpdateCatRequest struct {
	ID        string        `param:"id" json:"-" validate:"required,uuid"`
	CatName   *string       `json:"cat_name" validate:"omitempty,min=1"`
	Weight    *float64      `json:"weight"`
	Filename  *string       `json:"filename" validate:"omitempty,min=3"`
	Birthdate *string       `json:"birthdate" validate:"omitempty,birthdate"`
	Location  *geo.Location `json:"location" validate:"omitempty"`
}

// AdminUpdateCatRequest is the body of PUT /cats/:id/admin.
type AdminUpdateCatRequest struct {
	ID        string        `param:"id" json:"-" validate:"required,uuid"`
	CatName   *string       `json:"cat_name" validate:"omitempty,min=1"`
	Weight    *float64      `json:"weight"`
	Filename  *string       `json:"filename" validate:"omitempty,min=3"`
	Birthdate *string       `json:"birthdate" validate:"omitempty,birthdate"`
	Location  *geo.Location `json:"location" validate:"omitempty"`
	Owner     *string       `json:"owner" validate:"omitempty,uuid"`
}

func (r UpdateCatRequest) patch() model.CatPatch {
	return catPatch(r.CatName, r.Weight, r.Filename, r.Birthdate, r.Location)
}

func (r AdminUpdateCatRequest) patch() model.CatPatch {
	p := catPatch(r.CatName, r.Weight, r.Filename, r.Birthdate, r.Location)
	p.OwnerID = r.Owner
	return p
}

func catPatch(name *string, weight *float64, filename, birthdate *string, loc *geo.Location) model.CatPatch {
	p := model.CatPatch{
		CatName:  name,
		Weight:   weight,
		Filename: filename,
		Location: loc,
	}
	if birthdate != nil {
		// already validated
		t, _ := validation.ParseDate(*birthdate)
		p.Birthdate = &t
	}
	return p
}

// GetCat godoc
// @Summary Get cat by id
// @Tags cats
// @Produce json
// @Param id path string true "Cat ID"
// @Success 200 {object} model.Cat
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /cats/{id} [get]
func (h *CatHandler) GetCat(c echo.Context) error {
	var req IDParam
	if err := bind(c, &req); err != nil {
		return err
	}
	cat, err := h.svc.GetByID(c.Request().Context(), req.ID)
	if err != nil {
		return err
	}
	return read(c, cat)
}

// ListCats godoc
// @Summary List cats
// @Tags cats
// @Produce json
// @Success 200 {array} model.Cat
// @Router /cats [get]
func (h *CatHandler) ListCats(c echo.Context) error {
	cats, err := h.svc.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return read(c, cats)
}

// ListMyCats godoc
// @Summary List cats owned by the caller
// @Tags cats
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Cat
// @Failure 403 {object} errors.ErrorResponse
// @Router /cats/user [get]
func (h *CatHandler) ListMyCats(c echo.Context) error {
	cats, err := h.svc.ListMine(c.Request().Context(), auth.PrincipalFrom(c))
	if err != nil {
		return err
	}
	return read(c, cats)
}

// ListCatsInArea godoc
// @Summary List cats inside a bounding box
// @Tags cats
// @Produce json
// @Param topRight query string true "lat,lng"
// @Param bottomLeft query string true "lat,lng"
// @Success 200 {array} model.Cat
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /cats/area [get]
func (h *CatHandler) ListCatsInArea(c echo.Context) error {
	var req AreaQuery
	if err := bind(c, &req); err != nil {
		return err
	}
	topRight, _ := geo.ParsePoint(req.TopRight)
	bottomLeft, _ := geo.ParsePoint(req.BottomLeft)

	cats, err := h.svc.ListInArea(c.Request().Context(), topRight, bottomLeft)
	if err != nil {
		return err
	}
	return read(c, cats)
}

// CreateCat godoc
// @Summary Create cat
// @Tags cats
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param cat body CreateCatRequest true "Cat payload"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /cats [post]
func (h *CatHandler) CreateCat(c echo.Context) error {
	var req CreateCatRequest
	if err := bindCreateCat(c, &req); err != nil {
		return err
	}
	birthdate, _ := validation.ParseDate(req.Birthdate)

	cat := &model.Cat{
		CatName:   req.CatName,
		Weight:    *req.Weight,
		Filename:  req.Filename,
		Birthdate: birthdate,
		Location:  req.Location,
		OwnerID:   req.Owner,
	}
	up := upload.From(c)
	created, err := h.svc.Create(c.Request().Context(), auth.PrincipalFrom(c), cat, service.UploadDefaults{
		Location: up.Location,
	})
	if err != nil {
		return err
	}
	return written(c, MsgCatCreated, created)
}

// UpdateCat godoc
// @Summary Update one of the caller's cats
// @Tags cats
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cat ID"
// @Param cat body UpdateCatRequest true "Fields to change"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /cats/{id} [put]
func (h *CatHandler) UpdateCat(c echo.Context) error {
	var req UpdateCatRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cat, err := h.svc.Update(c.Request().Context(), auth.PrincipalFrom(c), req.ID, req.patch())
	if err != nil {
		return err
	}
	return written(c, MsgCatUpdated, cat)
}

// UpdateCatAdmin godoc
// @Summary Update any cat
// @Tags cats
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cat ID"
// @Param cat body AdminUpdateCatRequest true "Fields to change"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /cats/{id}/admin [put]
func (h *CatHandler) UpdateCatAdmin(c echo.Context) error {
	var req AdminUpdateCatRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cat, err := h.svc.UpdateAsAdmin(c.Request().Context(), auth.PrincipalFrom(c), req.ID, req.patch())
	if err != nil {
		return err
	}
	return written(c, MsgCatUpdated, cat)
}

// DeleteCat godoc
// @Summary Delete one of the caller's cats
// @Tags cats
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cat ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /cats/{id} [delete]
func (h *CatHandler) DeleteCat(c echo.Context) error {
	var req IDParam
	if err := bind(c, &req); err != nil {
		return err
	}
	cat, err := h.svc.Delete(c.Request().Context(), auth.PrincipalFrom(c), req.ID)
	if err != nil {
		return err
	}
	return written(c, MsgCatDeleted, cat)
}

// DeleteCatAdmin godoc
// @Summary Delete any cat
// @Tags cats
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cat ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /cats/{id}/admin [delete]
func (h *CatHandler) DeleteCatAdmin(c echo.Context) error {
	var req IDParam
	if err := bind(c, &req); err != nil {
		return err
	}
	cat, err := h.svc.DeleteAsAdmin(c.Request().Context(), auth.PrincipalFrom(c), req.ID)
	if err != nil {
		return err
	}
	return written(c, MsgCatDeleted, cat)
}
