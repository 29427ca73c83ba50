package models

import "gorm.io/datatypes"

// AssignedPermission records which MCCs, MPPs and form sections a user may act on.
// The code lists are sets: they are stored sorted and without duplicates.
type AssignedPermission struct {
	BaseModel

	UserID      uint                        `gorm:"uniqueIndex;not null" json:"user_id"`
	User        *User                       `json:"user,omitempty"`
	RoleID      uint                        `gorm:"index" json:"role_id"`
	Role        *Role                       `json:"role,omitempty"`
	MCCCodes    datatypes.JSONSlice[string] `gorm:"column:mcc_codes" json:"mcc_codes"`
	MPPCodes    datatypes.JSONSlice[string] `gorm:"column:mpp_codes" json:"mpp_codes"`
	FormStepIDs datatypes.JSONSlice[uint]   `gorm:"column:formsteps_ids" json:"formsteps_ids"`
	Status      bool                        `gorm:"not null" json:"status"`
}
