package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/dairyadmin/internal/invalidation"
	"github.com/charlesng35/dairyadmin/internal/models"
	apperrors "github.com/charlesng35/dairyadmin/pkg/errors"
)

func TestBankServiceLifecycle(t *testing.T) {
	db, audit := openSeededDB(t)
	notifier := &recordingNotifier{}
	svc, err := NewBankService(db, audit, WithNotifier(notifier))
	require.NoError(t, err)
	ctx := context.Background()

	bank, err := svc.Create(ctx, BankInput{Name: "State Bank", Branch: "Anand", IFSCCode: "sbin0001234"})
	require.NoError(t, err)
	require.Equal(t, "SBIN0001234", bank.IFSCCode)

	_, err = svc.Create(ctx, BankInput{Name: "Copy", IFSCCode: "SBIN0001234"})
	require.ErrorIs(t, err, ErrBankIFSCTaken)

	_, err = svc.Create(ctx, BankInput{Name: "Bad", IFSCCode: "SBI-1"})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "IFSC code is invalid", appErr.Fields["ifsc_code"])

	updated, err := svc.Update(ctx, bank.ID, BankInput{Branch: "Vidyanagar", Status: boolPtr(false)})
	require.NoError(t, err)
	require.Equal(t, "Vidyanagar", updated.Branch)
	require.False(t, updated.Status)

	page, err := svc.List(ctx, PageRequest{Search: "vidya"}, nil)
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)

	require.NoError(t, svc.Delete(ctx, bank.ID))
	require.Equal(t, []string{invalidation.BankCreate, invalidation.BankUpdate, invalidation.BankDelete}, notifier.Actions())
}

func TestBankServiceUpsertByIFSC(t *testing.T) {
	db, audit := openSeededDB(t)
	notifier := &recordingNotifier{}
	svc, err := NewBankService(db, audit, WithNotifier(notifier))
	require.NoError(t, err)
	ctx := context.Background()

	inserted, err := svc.Upsert(ctx, BankInput{Name: "HDFC", Branch: "Nadiad", IFSCCode: "HDFC0000123"})
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = svc.Upsert(ctx, BankInput{Name: "HDFC Bank", Branch: "Nadiad East", IFSCCode: "hdfc0000123"})
	require.NoError(t, err)
	require.False(t, inserted)

	var banks []models.Bank
	require.NoError(t, db.Find(&banks).Error)
	require.Len(t, banks, 1)
	require.Equal(t, "HDFC Bank", banks[0].Name)
	require.Empty(t, notifier.Actions())
}

func TestVillageServiceValidatesMCC(t *testing.T) {
	db, audit := openSeededDB(t)
	svc, err := NewVillageService(db, audit)
	require.NoError(t, err)
	ctx := context.Background()

	unknown := "MCC999"
	_, err = svc.Create(ctx, VillageInput{Name: "Karamsad", Code: "V001", MCCCode: &unknown})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Contains(t, appErr.Fields, "mcc_code")

	known := "MCC001"
	village, err := svc.Create(ctx, VillageInput{Name: "Karamsad", Code: "V001", MCCCode: &known})
	require.NoError(t, err)
	require.Equal(t, "MCC001", village.MCCCode)

	page, err := svc.List(ctx, PageRequest{}, VillageFilter{MCCCode: "MCC001"})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)

	inserted, err := svc.Upsert(ctx, VillageInput{Name: "Karamsad Gam", Code: "V001", MCCCode: &known})
	require.NoError(t, err)
	require.False(t, inserted)
	reloaded, err := svc.Get(ctx, village.ID)
	require.NoError(t, err)
	require.Equal(t, "Karamsad Gam", reloaded.Name)
}

func TestMCCServiceDeleteRefusedWhileReferenced(t *testing.T) {
	db, audit := openSeededDB(t)
	mccs, err := NewMCCService(db, audit)
	require.NoError(t, err)
	mpps, err := NewMPPService(db, audit)
	require.NoError(t, err)
	ctx := context.Background()

	var seeded models.MCC
	require.NoError(t, db.Take(&seeded, "code = ?", "MCC002").Error)
	require.ErrorIs(t, mccs.Delete(ctx, seeded.ID), ErrMCCInUse)

	var nadiad models.MPP
	require.NoError(t, db.Take(&nadiad, "code = ?", "MPP003").Error)
	require.NoError(t, mpps.Delete(ctx, nadiad.ID))
	require.NoError(t, mccs.Delete(ctx, seeded.ID))

	_, err = mccs.Create(ctx, OrgUnitInput{Code: "MCC001", Name: "Again"})
	require.ErrorIs(t, err, ErrMCCCodeTaken)
}

func TestMPPServiceFiltersByMCC(t *testing.T) {
	db, audit := openSeededDB(t)
	svc, err := NewMPPService(db, audit)
	require.NoError(t, err)
	ctx := context.Background()

	page, err := svc.List(ctx, PageRequest{}, OrgUnitFilter{MCCCode: "MCC001"})
	require.NoError(t, err)
	require.EqualValues(t, 2, page.Total)
	require.Equal(t, "MPP001", page.Items[0].Code)
	require.Equal(t, "MPP002", page.Items[1].Code)

	_, err = svc.Create(ctx, OrgUnitInput{Code: "MPP100", Name: "Orphan", MCCCode: "NOPE"})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Contains(t, appErr.Fields, "mcc_code")

	mpp, err := svc.Create(ctx, OrgUnitInput{Code: "MPP100", Name: "Sojitra", MCCCode: "MCC002"})
	require.NoError(t, err)
	moved, err := svc.Update(ctx, mpp.ID, OrgUnitInput{MCCCode: "MCC001", Code: "IGNORED"})
	require.NoError(t, err)
	require.Equal(t, "MCC001", moved.MCCCode)
	require.Equal(t, "MPP100", moved.Code)
}

func TestFormStepServiceOrdersBySortOrder(t *testing.T) {
	db, audit := openSeededDB(t)
	svc, err := NewFormStepService(db, audit)
	require.NoError(t, err)
	ctx := context.Background()

	first := 0
	_, err = svc.Create(ctx, FormStepInput{Name: "Consent", SortOrder: &first})
	require.NoError(t, err)

	steps, err := svc.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, steps, 6)
	require.Equal(t, "Consent", steps[0].Name)
	require.Equal(t, "Personal Details", steps[1].Name)

	_, err = svc.Create(ctx, FormStepInput{Name: "Consent"})
	require.ErrorIs(t, err, ErrFormStepNameTaken)
}
