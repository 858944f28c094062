package seed

import (
	"advisorapi/config"
	"advisorapi/internal/database"
	"advisorapi/internal/logger"
	. "advisorapi/internal/models"

	"gorm.io/gorm"
)

func DevelopmentAdvisors() []Advisor {
	return []Advisor{
		{
			BaseModel:    BaseModel{ID: 1},
			Name:         "John Doe",
			SIN:          "123456789",
			Address:      "123 Street",
			Phone:        "12345678",
			HealthStatus: HealthStatusGreen,
		}, {
			BaseModel:    BaseModel{ID: 2},
			Name:         "Jane Doe",
			SIN:          "987654321",
			Address:      "456 Avenue",
			Phone:        "87654321",
			HealthStatus: HealthStatusYellow,
		},
	}
}

// Seed inserts the development advisors that are not there yet. It returns how
// many were created.
func Seed(db *gorm.DB, config config.Config, log logger.Logger) (int, error) {
	log = log.Function("seed")
	log.Info("Seeding development data", "environment", config.Environment)

	if config.IsProduction() {
		return 0, log.ErrMsg("refusing to seed a production database")
	}

	tx := db.Begin()
	if tx.Error != nil {
		return 0, log.Err("failed to begin seed transaction", tx.Error)
	}
	defer database.TXDefer(tx, log)

	created := 0
	for _, advisor := range DevelopmentAdvisors() {
		var count int64
		if err := tx.Model(&Advisor{}).
			Where("id = ? OR sin = ?", advisor.ID, advisor.SIN).
			Count(&count).Error; err != nil {
			return created, log.Err("failed to check advisor", tx.AddError(err), "advisorID", advisor.ID)
		}
		if count > 0 {
			log.Info("Advisor already exists", "advisorID", advisor.ID)
			continue
		}

		log.Info("Seeding advisor", "advisorID", advisor.ID)
		if err := tx.Create(&advisor).Error; err != nil {
			return created, log.Err("failed to create advisor", tx.AddError(err), "advisorID", advisor.ID)
		}
		created++
	}

	return created, nil
}
