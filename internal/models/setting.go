package models

import "gorm.io/gorm"

// Setting is a single journal-level key/value setting, e.g. the initial
// account balance.
type Setting struct {
	gorm.Model
	Key   string `gorm:"uniqueIndex;not null"`
	Value string `gorm:"not null"`
}

// SettingInitialBalance is the baseline account value the equity curve
// starts from.
const SettingInitialBalance = "initial_balance"
