package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kallydish/kallydish/internal/logging"
	"github.com/kallydish/kallydish/internal/middleware"
	"github.com/kallydish/kallydish/internal/service"
	"github.com/kallydish/kallydish/internal/transport"
)

type DishHTTP struct {
	Svc *service.DishService
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}
	return uint(id), nil
}

func (h *DishHTTP) CreateDish(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "dish_create")

	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}

	var req transport.CreateDishRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_dish_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	dish, err := h.Svc.CreateDish(ctx, userID, req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, "missing or invalid fields")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create dish")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "dish created successfully",
		"dish_id": dish.ID,
	})
}

func (h *DishHTTP) GetDishes(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "dish_list")

	dishes, err := h.Svc.ListDishes(ctx)
	if err != nil {
		l.Error("list_dishes_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list dishes")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"recipes": dishes,
	})
}

func (h *DishHTTP) GetDish(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return err
	}

	dish, err := h.Svc.GetDish(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "dish not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get dish")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"resource": dish,
	})
}

func (h *DishHTTP) GetDishesByUser(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return err
	}

	dishes, err := h.Svc.ListDishesByUser(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list dishes")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user_id": id,
		"dishes":  dishes,
	})
}

func (h *DishHTTP) UpdateDish(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "dish_update")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req transport.UpdateDishRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_dish_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if _, err := h.Svc.UpdateDish(ctx, id, req); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "dish not found")
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to update dish")
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "dish updated successfully",
	})
}

func (h *DishHTTP) UpdateDishImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "dish_image_update")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req transport.SetDishImageRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_image_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.Svc.SetDishImage(ctx, id, req.Image); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "dish not found")
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid image data")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to update image")
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "image updated successfully",
	})
}

// ViewDishImage writes the image back as a base64 body, matching the wire
// format images are uploaded in.
func (h *DishHTTP) ViewDishImage(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return err
	}

	encoded, err := h.Svc.ViewDishImage(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "no image found for this dish")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read image")
	}

	return c.Blob(http.StatusOK, "image", []byte(encoded))
}

func (h *DishHTTP) DeleteDishImage(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.ClearDishImage(ctx, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "dish not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete image")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "image deleted successfully",
	})
}

func (h *DishHTTP) DeleteDish(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteDish(ctx, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "dish not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete dish")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "dish deleted successfully",
	})
}

func (h *DishHTTP) LikeDish(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}

	dishID, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.LikeDish(ctx, userID, dishID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "user or dish not found")
		case errors.Is(err, service.ErrAlreadyLiked):
			return echo.NewHTTPError(http.StatusForbidden, "user already liked the dish")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to like dish")
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "dish liked successfully",
	})
}
