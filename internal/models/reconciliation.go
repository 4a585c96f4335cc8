package models

import (
	"time"
)

// Reconciliation kinds
const (
	ReconciliationUpgradeFailed = "entitlement_upgrade_failed"
	ReconciliationPatchFailed   = "subscription_patch_failed"
)

// ReconciliationEntry records a paid notification whose downstream effects
// could not be fully applied and needs an operator to finish them.
type ReconciliationEntry struct {
	BaseModel

	Kind            string      `json:"kind" gorm:"not null;size:50;index"`
	TransID         string      `json:"trans_id" gorm:"not null;size:100;index"`
	OrderID         string      `json:"order_id" gorm:"size:100"`
	PrincipalID     string      `json:"principal_id" gorm:"not null;size:100;index"`
	PackageType     PackageType `json:"package_type" gorm:"size:20"`
	UpgradeTargetID string      `json:"upgrade_target_id,omitempty" gorm:"size:100"`
	Amount          int64       `json:"amount"`
	Error           string      `json:"error" gorm:"type:text"`

	Resolved   bool       `json:"resolved" gorm:"default:false;index"`
	ResolvedBy string     `json:"resolved_by,omitempty" gorm:"size:100"`
	Note       string     `json:"note,omitempty" gorm:"type:text"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// TableName 指定表名
func (ReconciliationEntry) TableName() string {
	return "reconciliation_entries"
}
