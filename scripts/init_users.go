package main

import (
	"fmt"
	"log"

	"item-feedback-server/models"
	"item-feedback-server/services"
	"item-feedback-server/storage"
)

// Seeds the default admin account if the database has no users yet.
func main() {
	db := storage.InitializeDB()

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		log.Fatalf("Error counting users: %v", err)
	}
	if count > 0 {
		fmt.Printf("Database already has %d users, skipping initialization.\n", count)
		return
	}

	admin, err := services.CreateUser(db, services.CreateUserInput{
		Username: "admin",
		Name:     "Administrator",
		Password: "admin",
		Role:     models.RoleAdmin,
		Group:    "Admin",
	})
	if err != nil {
		log.Fatalf("Error creating admin user: %v", err)
	}

	fmt.Printf("Created admin user %q (id %d). Change the default password.\n", admin.Username, admin.ID)
}
