package models

import (
	"log"

	"github.com/mmdatafocus/restaurant_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Category{}, &Item{},
		&RestaurantTable{},
		&Transaction{}, &OrderItem{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
