package models

import (
	"github.com/samber/lo"
)

// PackageType is the membership tier a payment buys
type PackageType string

const (
	PackageBasic   PackageType = "BASIC"
	PackageVIP     PackageType = "VIP"
	PackagePremium PackageType = "PREMIUM"
)

// Packages lists every purchasable tier
var Packages = []PackageType{PackageBasic, PackageVIP, PackagePremium}

// packageAmounts is the default price per tier, in VND
var packageAmounts = map[PackageType]int64{
	PackageBasic:   0,
	PackageVIP:     30000,
	PackagePremium: 50000,
}

// IsValid reports whether p is one of the known tiers
func (p PackageType) IsValid() bool {
	return lo.Contains(Packages, p)
}

// DefaultAmount returns the price table entry for the tier
func (p PackageType) DefaultAmount() int64 {
	return packageAmounts[p]
}

func (p PackageType) String() string {
	return string(p)
}
