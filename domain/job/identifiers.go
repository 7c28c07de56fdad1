package job

import (
	"fmt"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// JobNumberSequence issues per organization job numbers for human readable
// identifiers.
type JobNumberSequence struct {
	OrgID      types.ID `json:"orgId" gorm:"primary_key;auto_increment:false"`
	NextNumber int      `json:"nextNumber"`
}

func (s *JobNumberSequence) TableName() string {
	return "job_number_sequences"
}

var NextJobIdentifierFunc = NextJobIdentifier

func NextJobIdentifier(orgId types.ID, tx *gorm.DB) (string, error) {
	db := tx.Model(&JobNumberSequence{}).Where("org_id = ?", orgId).
		Update("next_number", gorm.Expr("next_number + 1"))
	if err := db.Error; err != nil {
		return "", err
	}
	if db.RowsAffected == 0 {
		if err := tx.Create(&JobNumberSequence{OrgID: orgId, NextNumber: 2}).Error; err != nil {
			return "", err
		}
		return fmt.Sprintf("RX%d-1", orgId), nil
	}

	seq := JobNumberSequence{}
	if err := tx.Where("org_id = ?", orgId).First(&seq).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("RX%d-%d", orgId, seq.NextNumber-1), nil
}
