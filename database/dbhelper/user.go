package dbhelper

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ray-remotestate/bistro/database"
	"github.com/ray-remotestate/bistro/models"
	"github.com/ray-remotestate/bistro/utils"
)

// CreateUser inserts a user. A duplicate username surfaces as a validation
// error even when it slipped past an existence precheck.
func CreateUser(tx *sql.Tx, username, hashedPassword string) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(`INSERT INTO users (username, password) VALUES ($1, $2) RETURNING id`,
		username, hashedPassword).Scan(&id)
	if isPQError(err, pqUniqueViolation) {
		return uuid.Nil, fmt.Errorf("%w: username %q is taken", models.ErrValidation, username)
	}
	return id, err
}

func IsUserExists(username string) (bool, error) {
	var count int
	err := database.Bistro.QueryRow(`SELECT COUNT(*) FROM users WHERE LOWER(username) = LOWER($1)`, username).Scan(&count)
	return count > 0, err
}

func GetUserByUsername(username string) (uuid.UUID, error) {
	var userID uuid.UUID

	err := database.Bistro.QueryRow(`
		SELECT id FROM users
		WHERE LOWER(username) = LOWER($1) AND archived_at IS NULL`, username).
		Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("%w: user %s", models.ErrNotFound, username)
	}
	if err != nil {
		return uuid.Nil, err
	}

	return userID, nil
}

func GetUserByPassword(username, password string) (uuid.UUID, error) {
	var id uuid.UUID
	var hashedPassword string

	err := database.Bistro.QueryRow(`
		SELECT id, password FROM users
		WHERE LOWER(username) = LOWER($1) AND archived_at IS NULL`, username).
		Scan(&id, &hashedPassword)
	if err != nil {
		return uuid.Nil, err
	}

	if !utils.CheckPassword(hashedPassword, password) {
		return uuid.Nil, fmt.Errorf("incorrect password")
	}

	return id, nil
}

func GetUserRoles(userID uuid.UUID) ([]models.Role, error) {
	rows, err := database.Bistro.Query(`
		SELECT role FROM user_roles
		WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}

	return roles, rows.Err()
}

// AssignRole grants a role. Granting an already held role is a no-op.
func AssignRole(userID uuid.UUID, role models.Role) error {
	_, err := database.Bistro.Exec(`
		INSERT INTO user_roles (user_id, role)
		VALUES ($1, $2)
		ON CONFLICT (user_id, role) DO NOTHING`, userID, role)
	return err
}

// RevokeRole removes a role. Revoking an absent role is a no-op.
func RevokeRole(userID uuid.UUID, role models.Role) error {
	_, err := database.Bistro.Exec(`
		DELETE FROM user_roles
		WHERE user_id = $1 AND role = $2`, userID, role)
	return err
}

func HasRole(userID uuid.UUID, role models.Role) (bool, error) {
	var exists bool
	err := database.Bistro.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM user_roles
			WHERE user_id = $1 AND role = $2
		)`, userID, role).Scan(&exists)
	return exists, err
}

func ListUsersByRole(role models.Role) ([]models.User, error) {
	rows, err := database.Bistro.Query(`
		SELECT u.id, u.username, u.created_at
		FROM users u
		JOIN user_roles ur ON u.id = ur.user_id
		WHERE ur.role = $1 AND u.archived_at IS NULL
		ORDER BY u.created_at ASC`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// SeedAdmin makes sure the configured bootstrap account exists and holds the
// manager role, so a fresh deployment has someone who can administer groups.
func SeedAdmin(username, password string) error {
	if username == "" {
		return nil
	}

	userID, err := GetUserByUsername(username)
	if errors.Is(err, models.ErrNotFound) {
		if password == "" {
			return fmt.Errorf("admin user %s does not exist and no password configured", username)
		}
		hashed, hashErr := utils.HashPassword(password)
		if hashErr != nil {
			return hashErr
		}
		txErr := database.Tx(func(tx *sql.Tx) error {
			userID, err = CreateUser(tx, username, hashed)
			return err
		})
		if txErr != nil {
			return txErr
		}
	} else if err != nil {
		return err
	}

	return AssignRole(userID, models.RoleManager)
}
