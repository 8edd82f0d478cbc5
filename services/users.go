package services

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"time"

	"item-feedback-server/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CreateUserInput struct {
	Username string
	Name     string
	Password string
	Role     string
	Group    string
}

// CreateUser registers a user with a bcrypt password hash. Duplicate
// usernames are a conflict, enforced both here and by the unique index.
func CreateUser(db *gorm.DB, in CreateUserInput) (*models.User, error) {
	if in.Username == "" {
		return nil, invalid("username", "must not be empty")
	}
	if in.Password == "" {
		return nil, invalid("password", "must not be empty")
	}

	var existing models.User
	switch err := db.Where("username = ?", in.Username).First(&existing).Error; {
	case err == nil:
		return nil, conflict("username " + in.Username + " already registered")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = models.RoleFeedbacker
	}
	user := models.User{
		Username:     in.Username,
		Name:         in.Name,
		PasswordHash: string(hash),
		Role:         role,
		Group:        in.Group,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate checks username/password and returns the user. Unknown user
// and wrong password both map to ErrBadCredentials.
func Authenticate(db *gorm.DB, username, password string) (*models.User, error) {
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	return &user, nil
}

func ListUsers(db *gorm.DB) ([]models.User, error) {
	var users []models.User
	if err := db.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ExportUsersCSV streams every user as one CSV row, header first. The csv
// writer buffers, so write failures surface on the final flush.
func ExportUsersCSV(db *gorm.DB, w io.Writer) error {
	users, err := ListUsers(db)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cw.Write([]string{"ID", "Username", "Name", "Role", "Group"})
	for _, u := range users {
		cw.Write([]string{
			strconv.FormatUint(uint64(u.ID), 10),
			u.Username,
			u.Name,
			u.Role,
			u.Group,
		})
	}
	cw.Flush()
	return cw.Error()
}

// DeleteUser removes the user row only; existing assignments keep their
// user_id so historical stats stay intact.
func DeleteUser(db *gorm.DB, userID uint) error {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("user", userID)
		}
		return err
	}
	return db.Delete(&user).Error
}

// OperationLogEntry is one action-log row joined with the acting user's
// display name.
type OperationLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	UserName  string    `json:"user_name"`
	Action    string    `json:"action"`
	TargetID  string    `json:"target_id"`
}

func ListOperationLogs(db *gorm.DB, limit int) ([]OperationLogEntry, error) {
	if limit <= 0 {
		limit = 200
	}
	entries := []OperationLogEntry{}
	err := db.Model(&models.OperationLog{}).
		Select("operation_logs.created_at AS timestamp, users.name AS user_name, operation_logs.action, operation_logs.target_id").
		Joins("JOIN users ON users.id = operation_logs.user_id").
		Order("operation_logs.created_at DESC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
