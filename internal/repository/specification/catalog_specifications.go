package specification

import "gorm.io/gorm"

// ActiveProducts hides products switched off by the shop team or by a
// pruning import.
type ActiveProducts struct{}

func (s ActiveProducts) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}
