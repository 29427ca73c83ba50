package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/charlesng35/dairyadmin/internal/models"
	"github.com/charlesng35/dairyadmin/internal/permissions"
	"github.com/charlesng35/dairyadmin/pkg/crypto"
)

// Seeded account used by the console login screen.
const (
	SuperAdminEmail    = "admin@erp.com"
	SuperAdminPassword = "admin123"
	SuperAdminRoleName = "Administrator"
)

// Seeded category names in id order.
var seedCategories = []string{models.ApprovalCategoryName, "Web Users", "Field Users"}

type seedRole struct {
	name     string
	category string
}

var seedRoles = []seedRole{
	{name: SuperAdminRoleName, category: "Web Users"},
	{name: "Data Entry Operator", category: "Web Users"},
	{name: "Field User", category: "Field Users"},
	{name: "MCC Supervisor", category: models.ApprovalCategoryName},
	{name: "Area Officer", category: models.ApprovalCategoryName},
	{name: "Zonal Manager", category: models.ApprovalCategoryName},
	{name: "General Manager", category: models.ApprovalCategoryName},
}

var seedFormSteps = []string{"Personal Details", "Bank Details", "Family Details", "Cattle Details", "Documents"}

var seedMCCs = []models.MCC{
	{Code: "MCC001", Name: "Anand MCC", Status: true},
	{Code: "MCC002", Name: "Kheda MCC", Status: true},
}

var seedMPPs = []models.MPP{
	{Code: "MPP001", Name: "Vasad MPP", MCCCode: "MCC001", Status: true},
	{Code: "MPP002", Name: "Borsad MPP", MCCCode: "MCC001", Status: true},
	{Code: "MPP003", Name: "Nadiad MPP", MCCCode: "MCC002", Status: true},
}

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Category{},
		&models.Role{},
		&models.Module{},
		&models.Permission{},
		&models.User{},
		&models.ApprovalHierarchy{},
		&models.HierarchyLevel{},
		&models.AssignedPermission{},
		&models.Bank{},
		&models.Village{},
		&models.MCC{},
		&models.MPP{},
		&models.FormStep{},
		&models.AuditLog{},
		&models.CacheEntry{},
	)
}

// SeedData populates categories, roles, the module tree, the super admin and
// the organisational masters required by a fresh installation. It is idempotent.
func SeedData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed: db is required")
	}

	categoryIDs := make(map[string]uint, len(seedCategories))
	for _, name := range seedCategories {
		var category models.Category
		if err := db.Where(models.Category{Name: name}).
			Attrs(models.Category{Status: true}).
			FirstOrCreate(&category).Error; err != nil {
			return fmt.Errorf("seed category %s: %w", name, err)
		}
		categoryIDs[name] = category.ID
	}

	roleIDs := make(map[string]uint, len(seedRoles))
	for _, def := range seedRoles {
		var role models.Role
		if err := db.Where(models.Role{Name: def.name}).
			Attrs(models.Role{CategoryID: categoryIDs[def.category], Status: true}).
			FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", def.name, err)
		}
		roleIDs[def.name] = role.ID
	}

	if err := permissions.Sync(context.Background(), db); err != nil {
		return err
	}
	if err := grantAllModules(db, roleIDs[SuperAdminRoleName]); err != nil {
		return err
	}

	if err := seedSuperAdmin(db, roleIDs[SuperAdminRoleName]); err != nil {
		return err
	}

	for idx, name := range seedFormSteps {
		if err := db.Where(models.FormStep{Name: name}).
			Attrs(models.FormStep{SortOrder: idx + 1, Status: true}).
			FirstOrCreate(&models.FormStep{}).Error; err != nil {
			return fmt.Errorf("seed form step %s: %w", name, err)
		}
	}

	for _, mcc := range seedMCCs {
		if err := db.Where(models.MCC{Code: mcc.Code}).Attrs(mcc).FirstOrCreate(&models.MCC{}).Error; err != nil {
			return fmt.Errorf("seed mcc %s: %w", mcc.Code, err)
		}
	}
	for _, mpp := range seedMPPs {
		if err := db.Where(models.MPP{Code: mpp.Code}).Attrs(mpp).FirstOrCreate(&models.MPP{}).Error; err != nil {
			return fmt.Errorf("seed mpp %s: %w", mpp.Code, err)
		}
	}

	return nil
}

func seedSuperAdmin(db *gorm.DB, roleID uint) error {
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", SuperAdminEmail).Count(&count).Error; err != nil {
		return fmt.Errorf("seed super admin: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := crypto.HashPassword(SuperAdminPassword)
	if err != nil {
		return fmt.Errorf("seed super admin: hash password: %w", err)
	}

	admin := models.User{
		Name:         "Super Admin",
		Email:        SuperAdminEmail,
		Password:     hash,
		RoleID:       &roleID,
		IsSuperAdmin: true,
		Status:       true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed super admin: %w", err)
	}
	return nil
}

func grantAllModules(db *gorm.DB, roleID uint) error {
	var moduleIDs []uint
	if err := db.Model(&models.Module{}).Pluck("id", &moduleIDs).Error; err != nil {
		return fmt.Errorf("seed grants: load modules: %w", err)
	}

	var existing []uint
	if err := db.Model(&models.Permission{}).Where("role_id = ?", roleID).Pluck("module_id", &existing).Error; err != nil {
		return fmt.Errorf("seed grants: load permissions: %w", err)
	}
	current := make(map[uint]struct{}, len(existing))
	for _, id := range existing {
		current[id] = struct{}{}
	}

	toCreate := make([]models.Permission, 0, len(moduleIDs))
	for _, id := range moduleIDs {
		if _, ok := current[id]; ok {
			continue
		}
		toCreate = append(toCreate, models.Permission{RoleID: roleID, ModuleID: id, Status: true})
	}
	if len(toCreate) == 0 {
		return nil
	}
	return db.Create(&toCreate).Error
}
