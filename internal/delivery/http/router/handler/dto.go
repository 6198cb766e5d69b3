package handler

import (
	"time"

	"pointshop/internal/domain/entity"
	"pointshop/internal/usecase"
)

// --- Request DTOs ---

type registerRequest struct {
	Handle          string `json:"handle" form:"handle" validate:"required,max=64"`
	Password        string `json:"password" form:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm" validate:"required"`
}

type loginRequest struct {
	Handle   string `json:"handle" form:"handle" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type adminLoginRequest struct {
	Password string `json:"password" form:"password" validate:"required"`
}

type redeemRequest struct {
	VariantID int64 `json:"variant_id" form:"variant_id" validate:"required,gt=0"`
}

type allowlistRequest struct {
	Handle string `json:"handle" form:"handle" validate:"required"`
	Shop   string `json:"shop" form:"shop" validate:"required"`
}

type pointsRequest struct {
	Handle string `json:"handle" form:"handle" validate:"required"`
	Points *int   `json:"points" form:"points" validate:"required"`
}

type scheduleRequest struct {
	OpensAt  string `json:"opens_at" form:"opens_at"`
	ClosesAt string `json:"closes_at" form:"closes_at"`
}

type variantRequest struct {
	Label      string `json:"label" form:"label" validate:"required"`
	PointsCost *int   `json:"points_cost" form:"points_cost" validate:"required,gte=0"`
	Stock      *int   `json:"stock" form:"stock"`
	Position   *int   `json:"position" form:"position"`
	// Active defaults to true when omitted.
	Active *bool `json:"active" form:"active"`
}

func (r variantRequest) input() usecase.VariantInput {
	active := true
	if r.Active != nil {
		active = *r.Active
	}

	return usecase.VariantInput{
		Label:      r.Label,
		PointsCost: *r.PointsCost,
		Stock:      r.Stock,
		Position:   r.Position,
		Active:     active,
	}
}

type statusRequest struct {
	Status string `json:"status" form:"status" validate:"required"`
}

// --- Response DTOs ---

type userResponse struct {
	ID         int64     `json:"id"`
	Handle     string    `json:"handle"`
	Points     int       `json:"points"`
	Registered bool      `json:"registered"`
	CreatedAt  time.Time `json:"created_at"`
}

func newUserResponse(u *entity.User) *userResponse {
	return &userResponse{
		ID:         u.ID,
		Handle:     u.Handle,
		Points:     u.Points,
		Registered: u.HasPassword(),
		CreatedAt:  u.CreatedAt,
	}
}

type variantResponse struct {
	ID         int64  `json:"id"`
	ProductID  int64  `json:"product_id"`
	Label      string `json:"label"`
	PointsCost int    `json:"points_cost"`
	Stock      *int   `json:"stock"`
	SoldOut    bool   `json:"sold_out"`
	Active     bool   `json:"active"`
	Position   int    `json:"position"`
}

func newVariantResponse(v *entity.ProductVariant) *variantResponse {
	return &variantResponse{
		ID:         v.ID,
		ProductID:  v.ProductID,
		Label:      v.Label,
		PointsCost: v.PointsCost,
		Stock:      v.Stock,
		SoldOut:    v.SoldOut(),
		Active:     v.IsActive,
		Position:   v.Position,
	}
}

type productResponse struct {
	ID          int64              `json:"id"`
	Shop        string             `json:"shop"`
	Title       string             `json:"title"`
	Description *string            `json:"description"`
	ImageURL    *string            `json:"image_url"`
	Active      bool               `json:"active"`
	Position    int                `json:"position"`
	CreatedAt   time.Time          `json:"created_at"`
	Variants    []*variantResponse `json:"variants"`
}

func newProductResponse(p *entity.Product) *productResponse {
	variants := make([]*variantResponse, 0, len(p.Variants))
	for _, v := range p.Variants {
		variants = append(variants, newVariantResponse(v))
	}

	return &productResponse{
		ID:          p.ID,
		Shop:        p.Shop,
		Title:       p.Title,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Active:      p.IsActive,
		Position:    p.Position,
		CreatedAt:   p.CreatedAt,
		Variants:    variants,
	}
}

func newProductsResponse(products []*entity.Product) []*productResponse {
	out := make([]*productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, newProductResponse(p))
	}

	return out
}

type shopStatusResponse struct {
	Shop      string     `json:"shop"`
	Label     string     `json:"label"`
	HasAccess bool       `json:"has_access"`
	IsOpen    bool       `json:"is_open"`
	OpensAt   *time.Time `json:"opens_at"`
	ClosesAt  *time.Time `json:"closes_at"`
}

type redeemResponse struct {
	OrderID      int64  `json:"order_id"`
	Shop         string `json:"shop"`
	ProductTitle string `json:"product_title"`
	VariantLabel string `json:"variant_label"`
	PointsSpent  int    `json:"points_spent"`
	Balance      int    `json:"balance"`
}

type allowlistEntryResponse struct {
	ID        int64     `json:"id"`
	Handle    string    `json:"handle"`
	Shop      string    `json:"shop"`
	CreatedAt time.Time `json:"created_at"`
}

func newAllowlistEntryResponse(e *entity.AllowlistEntry) *allowlistEntryResponse {
	return &allowlistEntryResponse{ID: e.ID, Handle: e.Handle, Shop: e.Shop, CreatedAt: e.CreatedAt}
}

type shopSettingsResponse struct {
	Shop      string     `json:"shop"`
	Label     string     `json:"label"`
	OpensAt   *time.Time `json:"opens_at"`
	ClosesAt  *time.Time `json:"closes_at"`
	IsOpen    bool       `json:"is_open"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func newShopSettingsResponse(s *entity.ShopSettings, now time.Time) *shopSettingsResponse {
	return &shopSettingsResponse{
		Shop:      s.Shop,
		Label:     entity.ShopLabel(s.Shop),
		OpensAt:   s.OpensAt,
		ClosesAt:  s.ClosesAt,
		IsOpen:    s.IsOpen(now),
		UpdatedAt: s.UpdatedAt,
	}
}

type orderResponse struct {
	ID           int64     `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Handle       string    `json:"handle"`
	Shop         string    `json:"shop"`
	ProductTitle string    `json:"product_title"`
	VariantLabel string    `json:"variant_label"`
	PointsSpent  int       `json:"points_spent"`
	Status       string    `json:"status"`
	StatusLabel  string    `json:"status_label"`
}

func newOrderResponse(o *entity.OrderView) *orderResponse {
	return &orderResponse{
		ID:           o.ID,
		CreatedAt:    o.CreatedAt,
		Handle:       o.Handle,
		Shop:         o.Shop,
		ProductTitle: o.ProductTitle,
		VariantLabel: o.VariantLabel,
		PointsSpent:  o.PointsSpent,
		Status:       string(o.Status),
		StatusLabel:  o.Status.Label(),
	}
}

type pageResponse struct {
	Page       int   `json:"page"`
	TotalPages int   `json:"total_pages"`
	Total      int64 `json:"total"`
}
