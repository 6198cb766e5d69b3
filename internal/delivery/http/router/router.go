// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"pointshop/internal/delivery/http/middleware"
	"pointshop/internal/delivery/http/router/handler"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler       *handler.AuthHandler
	ShopHandler       *handler.ShopHandler
	RedemptionHandler *handler.RedemptionHandler
	UploadHandler     *handler.UploadHandler
	AdminHandler      *handler.AdminHandler
	CatalogHandler    *handler.CatalogHandler
	OrderHandler      *handler.OrderHandler
	SessionMiddleware *middleware.SessionMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	auth       *handler.AuthHandler
	shop       *handler.ShopHandler
	redemption *handler.RedemptionHandler
	upload     *handler.UploadHandler
	admin      *handler.AdminHandler
	catalog    *handler.CatalogHandler
	order      *handler.OrderHandler
	session    *middleware.SessionMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		auth:       params.AuthHandler,
		shop:       params.ShopHandler,
		redemption: params.RedemptionHandler,
		upload:     params.UploadHandler,
		admin:      params.AdminHandler,
		catalog:    params.CatalogHandler,
		order:      params.OrderHandler,
		session:    params.SessionMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/static/uploads/:name", r.upload.Serve)

	// Everything below sees the session identity.
	app := e.Group("", r.session.Resolve)

	authGroup := app.Group("/auth")
	{
		authGroup.POST("/register", r.auth.Register)
		authGroup.POST("/login", r.auth.Login)
		authGroup.POST("/logout", r.auth.Logout)
		authGroup.GET("/me", r.auth.Me, r.session.RequireUser)
	}

	shopGroup := app.Group("/shops")
	{
		shopGroup.GET("", r.shop.ListShops)
		shopGroup.GET("/:shop", r.shop.Catalog)
		shopGroup.GET("/:shop/products/:id", r.shop.ProductDetail)
	}

	// Anonymous callers reach the engine so declines keep their fixed order.
	app.POST("/api/redeem", r.redemption.Redeem)

	app.POST("/admin/login", r.auth.AdminLogin)
	app.POST("/admin/logout", r.auth.AdminLogout)

	adminGroup := app.Group("/admin", r.session.RequireAdmin)
	{
		adminGroup.GET("/allowlist", r.admin.ListAllowlist)
		adminGroup.POST("/allowlist", r.admin.AddToAllowlist)
		adminGroup.DELETE("/allowlist/:id", r.admin.RemoveFromAllowlist)
		adminGroup.POST("/allowlist/:shop/all", r.admin.AllowAllUsers)
		adminGroup.DELETE("/allowlist/:shop/all", r.admin.RevokeShop)

		adminGroup.POST("/points", r.admin.SetPoints)
		adminGroup.GET("/users", r.admin.ListUsers)

		adminGroup.GET("/settings", r.admin.ListSettings)
		adminGroup.PUT("/settings/:shop", r.admin.SetSchedule)

		adminGroup.GET("/products", r.catalog.ListProducts)
		adminGroup.POST("/products", r.catalog.CreateProduct)
		adminGroup.PUT("/products/:id", r.catalog.UpdateProduct)
		adminGroup.DELETE("/products/:id", r.catalog.DeleteProduct)
		adminGroup.DELETE("/products/:id/image", r.catalog.DeleteProductImage)
		adminGroup.POST("/products/:id/variants", r.catalog.AddVariant)
		adminGroup.PUT("/variants/:id", r.catalog.UpdateVariant)
		adminGroup.DELETE("/variants/:id", r.catalog.DeleteVariant)

		adminGroup.GET("/orders", r.order.ListOrders)
		adminGroup.GET("/orders/export", r.order.ExportOrders)
		adminGroup.PUT("/orders/:id/status", r.order.UpdateStatus)
	}
}
