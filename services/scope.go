package services

import (
	"item-feedback-server/models"

	"gorm.io/gorm"
)

// Visibility scopes accepted by listing and stats.
const (
	ScopeAll          = "all"
	ScopeMineCreated  = "mine_created"
	ScopeMineAssigned = "mine_assigned"
)

// ScopeItems maps (scope, actor, role) to a predicate over items, shared by
// ListItems and StatsSummary so a listing and its stats always agree.
//
// Every role gets the same treatment: mine_created/mine_assigned restrict to
// the actor, "all" and unknown scopes are unrestricted. Admin-only behavior
// lives on other endpoints, not here.
func ScopeItems(scope string, actorID uint, role string) func(*gorm.DB) *gorm.DB {
	switch scope {
	case ScopeMineCreated:
		if actorID != 0 {
			return func(tx *gorm.DB) *gorm.DB {
				return tx.Where("items.creator_id = ?", actorID)
			}
		}
	case ScopeMineAssigned:
		if actorID != 0 {
			return func(tx *gorm.DB) *gorm.DB {
				sub := tx.Session(&gorm.Session{NewDB: true}).
					Model(&models.Assignment{}).
					Select("item_id").
					Where("user_id = ?", actorID)
				return tx.Where("items.id IN (?)", sub)
			}
		}
	}
	return func(tx *gorm.DB) *gorm.DB { return tx }
}
