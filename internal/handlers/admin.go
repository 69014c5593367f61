package handlers

import (
	"net/http"
	"strconv"

	"ecommerce/internal/apperr"
	"ecommerce/internal/utils/helpers"

	"github.com/gorilla/mux"
)

// GetUserByID godoc
// @Summary Get a user by id
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.UserProfileResponse
// @Failure 403 {object} helpers.ErrorResponse
// @Failure 404 {object} helpers.ErrorResponse
// @Router /api/admin/users/{id} [get]
func (h *AuthHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		helpers.AppError(w, apperr.New(apperr.KindValidation, "invalid user id"))
		return
	}

	user, err := h.auth.GetUserByID(r.Context(), id)
	if err != nil {
		helpers.AppError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, user.Profile())
}
