package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Columns owned by in-place updates (counters, tier). Whole-row saves leave
// them alone.
var (
	articleManagedColumns = []string{"view_count", "likes_count"}
	postManagedColumns    = []string{"likes_count", "reposts_count"}
	memberManagedColumns  = []string{"membership_tier"}
)

// saveExcept writes value without the managed columns and scans their
// stored values back into it through RETURNING.
func saveExcept(tx *gorm.DB, value interface{}, managed []string) error {
	returning := make([]clause.Column, 0, len(managed))
	for _, name := range managed {
		returning = append(returning, clause.Column{Name: name})
	}

	omit := append([]string{clause.Associations}, managed...)
	return tx.Clauses(clause.Returning{Columns: returning}).Omit(omit...).Save(value).Error
}
