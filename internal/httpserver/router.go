package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kallydish/kallydish/internal/middleware"
)

type Deps struct {
	Auth    *AuthHTTP
	Dish    *DishHTTP
	TokenMW *middleware.TokenAuth
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	user := e.Group("/user")
	user.POST("/register", d.Auth.Register)
	user.POST("/login", d.Auth.Login)
	user.GET("/welcome", d.Auth.Welcome, d.TokenMW.RequireAccess)
	user.POST("/refresh", d.Auth.Refresh, d.TokenMW.RequireRefresh)
	user.POST("/logout", d.Auth.Logout, d.TokenMW.RequireRefresh)

	dish := e.Group("/dish")

	// public reads
	dish.GET("/dishes/:id", d.Dish.GetDish)
	dish.GET("/image/view/:id", d.Dish.ViewDishImage)

	// everything else takes an access token
	dish.POST("", d.Dish.CreateDish, d.TokenMW.RequireAccess)
	dish.GET("/", d.Dish.GetDishes, d.TokenMW.RequireAccess)
	dish.GET("/user/:id", d.Dish.GetDishesByUser, d.TokenMW.RequireAccess)
	dish.PUT("/:id", d.Dish.UpdateDish, d.TokenMW.RequireAccess)
	dish.DELETE("/delete/:id", d.Dish.DeleteDish, d.TokenMW.RequireAccess)
	dish.PUT("/image/:id", d.Dish.UpdateDishImage, d.TokenMW.RequireAccess)
	dish.DELETE("/image/delete/:id", d.Dish.DeleteDishImage, d.TokenMW.RequireAccess)
	dish.POST("/likes/:id", d.Dish.LikeDish, d.TokenMW.RequireAccess)
}
