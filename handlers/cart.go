package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ray-remotestate/bistro/database/dbhelper"
	"github.com/ray-remotestate/bistro/middlewares"
	"github.com/ray-remotestate/bistro/models"
	"github.com/ray-remotestate/bistro/utils"
)

// Cart endpoints operate on the caller's own cart; the user id always comes
// from the token, never from the request body.

func GetCart(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	lines, err := dbhelper.GetCartLines(claims.UserID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, models.Cart{
		Lines: lines,
		Total: models.CartTotal(lines),
	})
}

func AddToCart(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var in models.CartAddInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteError(w, fmt.Errorf("%w: invalid request body", models.ErrValidation))
		return
	}
	if err := in.Validate(); err != nil {
		utils.WriteError(w, err)
		return
	}

	line, err := dbhelper.AddCartItem(claims.UserID, in.MenuItemID, in.Quantity)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, line)
}

func ClearCart(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := dbhelper.ClearCart(claims.UserID); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "cart cleared"})
}
