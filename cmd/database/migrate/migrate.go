package migration

import (
	"Foodgram-Backend/entities"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Models lists every table in dependency order.
var Models = []any{
	&entities.User{},
	&entities.Tag{},
	&entities.Ingredient{},
	&entities.Recipe{},
	&entities.RecipeIngredient{},
	&entities.Favorite{},
	&entities.ShoppingCart{},
	&entities.Subscription{},
}

func Migrate(db *gorm.DB, log *logrus.Logger) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return errors.Wrap(err, "create uuid-ossp extension")
	}

	for _, model := range Models {
		if err := db.AutoMigrate(model); err != nil {
			return errors.Wrapf(err, "migrate %T", model)
		}
	}

	log.Info("database migration complete")
	return nil
}
