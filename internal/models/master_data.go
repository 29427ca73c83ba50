package models

// Bank is a payout bank branch for member payments.
type Bank struct {
	BaseModel

	Name     string `gorm:"size:128;not null" json:"name"`
	Branch   string `gorm:"size:128" json:"branch"`
	IFSCCode string `gorm:"column:ifsc_code;uniqueIndex;size:16;not null" json:"ifsc_code"`
	Status   bool   `gorm:"not null" json:"status"`
}

// Village is a member village served by an MCC.
type Village struct {
	BaseModel

	Name    string `gorm:"size:128;not null" json:"name"`
	Code    string `gorm:"uniqueIndex;size:32;not null" json:"code"`
	MCCCode string `gorm:"column:mcc_code;index;size:32" json:"mcc_code"`
	Status  bool   `gorm:"not null" json:"status"`
}

// MCC is a milk chilling centre.
type MCC struct {
	BaseModel

	Code   string `gorm:"uniqueIndex;size:32;not null" json:"code"`
	Name   string `gorm:"size:128;not null" json:"name"`
	Status bool   `gorm:"not null" json:"status"`
}

// TableName avoids GORM pluralising the acronym into "m_cc_s".
func (MCC) TableName() string {
	return "mccs"
}

// MPP is a milk procurement point attached to an MCC.
type MPP struct {
	BaseModel

	Code    string `gorm:"uniqueIndex;size:32;not null" json:"code"`
	Name    string `gorm:"size:128;not null" json:"name"`
	MCCCode string `gorm:"column:mcc_code;index;size:32;not null" json:"mcc_code"`
	Status  bool   `gorm:"not null" json:"status"`
}

// TableName avoids GORM pluralising the acronym into "m_pp_s".
func (MPP) TableName() string {
	return "mpps"
}

// FormStep is a section of the member onboarding form that can be allocated to users.
type FormStep struct {
	BaseModel

	Name      string `gorm:"uniqueIndex;size:128;not null" json:"name"`
	SortOrder int    `gorm:"default:0" json:"sort_order"`
	Status    bool   `gorm:"not null" json:"status"`
}
