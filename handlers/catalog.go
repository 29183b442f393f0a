package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ray-remotestate/bistro/database/dbhelper"
	"github.com/ray-remotestate/bistro/middlewares"
	"github.com/ray-remotestate/bistro/models"
	"github.com/ray-remotestate/bistro/utils"
)

// Catalog reads are open to everyone, authenticated or not. Mutations are
// guarded in-handler with RequireRole so the public GET routes can share
// their paths.

func ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := dbhelper.ListCategories()
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, categories)
}

func CreateCategory(w http.ResponseWriter, r *http.Request) {
	if _, err := middlewares.RequireRole(r, models.RoleManager); err != nil {
		utils.WriteError(w, err)
		return
	}

	var in models.CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteError(w, fmt.Errorf("%w: invalid request body", models.ErrValidation))
		return
	}
	if err := in.Validate(); err != nil {
		utils.WriteError(w, err)
		return
	}

	category, err := dbhelper.CreateCategory(in.Title)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, category)
}

func UpdateCategory(w http.ResponseWriter, r *http.Request) {
	if _, err := middlewares.RequireRole(r, models.RoleManager); err != nil {
		utils.WriteError(w, err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var in models.CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteError(w, fmt.Errorf("%w: invalid request body", models.ErrValidation))
		return
	}
	if err := in.Validate(); err != nil {
		utils.WriteError(w, err)
		return
	}

	category, err := dbhelper.UpdateCategory(id, in.Title)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, category)
}

func DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if _, err := middlewares.RequireRole(r, models.RoleManager); err != nil {
		utils.WriteError(w, err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := dbhelper.DeleteCategory(id); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

func ListMenuItems(w http.ResponseWriter, r *http.Request) {
	var filter models.MenuItemFilter
	if raw := r.URL.Query().Get("category"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.WriteError(w, fmt.Errorf("%w: invalid category filter", models.ErrValidation))
			return
		}
		filter.CategoryID = id
	}
	filter.Search = r.URL.Query().Get("search")

	items, err := dbhelper.ListMenuItems(filter)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, items)
}

func GetMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	item, err := dbhelper.GetMenuItem(id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, item)
}

func CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	if _, err := middlewares.RequireRole(r, models.RoleManager); err != nil {
		utils.WriteError(w, err)
		return
	}

	var in models.MenuItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteError(w, fmt.Errorf("%w: invalid request body", models.ErrValidation))
		return
	}
	if err := in.Validate(); err != nil {
		utils.WriteError(w, err)
		return
	}

	item, err := dbhelper.CreateMenuItem(in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, item)
}

func UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	if _, err := middlewares.RequireRole(r, models.RoleManager); err != nil {
		utils.WriteError(w, err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var in models.MenuItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteError(w, fmt.Errorf("%w: invalid request body", models.ErrValidation))
		return
	}
	if err := in.Validate(); err != nil {
		utils.WriteError(w, err)
		return
	}

	item, err := dbhelper.UpdateMenuItem(id, in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, item)
}

func DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	if _, err := middlewares.RequireRole(r, models.RoleManager); err != nil {
		utils.WriteError(w, err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := dbhelper.DeleteMenuItem(id); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "menu item deleted"})
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id", models.ErrValidation)
	}
	return id, nil
}
