package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/bistro/database/dbhelper"
	"github.com/ray-remotestate/bistro/models"
	"github.com/ray-remotestate/bistro/utils"
)

// Group membership endpoints. The /groups subtree is manager-only via
// RoleBasedMiddleware; handlers resolve the role from the path and mutate.

func ListGroupUsers(w http.ResponseWriter, r *http.Request) {
	role, err := groupRole(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	users, err := dbhelper.ListUsersByRole(role)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, users)
}

func AddGroupUser(w http.ResponseWriter, r *http.Request) {
	modifyGroup(w, r, true)
}

func RemoveGroupUser(w http.ResponseWriter, r *http.Request) {
	modifyGroup(w, r, false)
}

func modifyGroup(w http.ResponseWriter, r *http.Request, add bool) {
	role, err := groupRole(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	type request struct {
		Username string `json:"username"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, fmt.Errorf("%w: invalid request body", models.ErrValidation))
		return
	}
	if req.Username == "" {
		utils.WriteError(w, fmt.Errorf("%w: username is required", models.ErrValidation))
		return
	}

	userID, err := dbhelper.GetUserByUsername(req.Username)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	if add {
		err = dbhelper.AssignRole(userID, role)
	} else {
		err = dbhelper.RevokeRole(userID, role)
	}
	if err != nil {
		logrus.WithError(err).WithField("role", role).Error("failed to update group membership")
		utils.WriteError(w, err)
		return
	}

	action := "added to"
	if !add {
		action = "removed from"
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("user %s %s %s group", req.Username, action, role),
	})
}

func groupRole(r *http.Request) (models.Role, error) {
	name := mux.Vars(r)["group"]
	role, ok := models.ParseRole(name)
	if !ok {
		return "", fmt.Errorf("%w: group %q", models.ErrNotFound, name)
	}
	return role, nil
}
