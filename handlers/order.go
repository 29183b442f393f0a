package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/ray-remotestate/bistro/database/dbhelper"
	"github.com/ray-remotestate/bistro/middlewares"
	"github.com/ray-remotestate/bistro/models"
	"github.com/ray-remotestate/bistro/utils"
)

func CreateOrder(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	order, err := dbhelper.PlaceOrder(claims.UserID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, order)
}

func ListOrders(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	scope := models.ScopeForRoles(claims.Roles)
	orders, err := dbhelper.ListOrders(scope, claims.UserID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, orders)
}

func GetOrder(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	order, err := dbhelper.GetOrder(id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if !orderVisible(claims, order) {
		utils.WriteError(w, fmt.Errorf("%w: order %s", models.ErrNotFound, id))
		return
	}

	utils.RespondJSON(w, http.StatusOK, order)
}

// UpdateOrder applies the role matrix: managers may set status and reassign
// delivery crew; the assigned crew member may set status only.
func UpdateOrder(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	type request struct {
		Status         *string    `json:"status"`
		DeliveryCrewID *uuid.UUID `json:"delivery_crew_id"`
	}
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, fmt.Errorf("%w: invalid request body", models.ErrValidation))
		return
	}

	order, err := dbhelper.GetOrder(id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	isManager := claims.HasRole(models.RoleManager)
	if !isManager && !orderVisible(claims, order) {
		utils.WriteError(w, fmt.Errorf("%w: order %s", models.ErrNotFound, id))
		return
	}

	isAssignedCrew := claims.HasRole(models.RoleDeliveryCrew) &&
		order.DeliveryCrewID != nil && *order.DeliveryCrewID == claims.UserID
	if err := models.CanEditOrder(isManager, isAssignedCrew, req.DeliveryCrewID != nil); err != nil {
		utils.WriteError(w, err)
		return
	}

	var status *models.OrderStatus
	if req.Status != nil {
		s := models.OrderStatus(*req.Status)
		if !s.IsValid() {
			utils.WriteError(w, fmt.Errorf("%w: unknown status %q", models.ErrValidation, *req.Status))
			return
		}
		status = &s
	}
	if status == nil && req.DeliveryCrewID == nil {
		utils.WriteError(w, fmt.Errorf("%w: nothing to update", models.ErrValidation))
		return
	}

	updated, err := dbhelper.UpdateOrder(id, status, req.DeliveryCrewID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, updated)
}

func DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if _, err := middlewares.RequireRole(r, models.RoleManager); err != nil {
		utils.WriteError(w, err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := dbhelper.DeleteOrder(id); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "order deleted"})
}

// orderVisible reports whether the caller's scope covers the order.
func orderVisible(claims *middlewares.Claims, order models.Order) bool {
	switch models.ScopeForRoles(claims.Roles) {
	case models.ScopeAll:
		return true
	case models.ScopeAssigned:
		return order.DeliveryCrewID != nil && *order.DeliveryCrewID == claims.UserID
	default:
		return order.UserID == claims.UserID
	}
}
