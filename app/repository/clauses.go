package repository

import "gorm.io/gorm/clause"

func onConflictUsernameDoNothing() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoNothing: true,
	}
}
