package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gp-maquinas/maintenance-service/internal/domain"
	"github.com/gp-maquinas/maintenance-service/internal/repository"
	apperrors "github.com/gp-maquinas/maintenance-service/pkg/util"
)

func validRecord(storeID string) *domain.ServiceRecord {
	return &domain.ServiceRecord{
		MachineCode:   "ELEV-01",
		MachineType:   "Elevador",
		StoreID:       storeID,
		Location:      "Subsolo",
		ServiceTypeID: "preventive",
		TechnicianID:  1,
		ServiceDate:   day("2024-03-05"),
		Description:   "Troca de cabos",
		Cost:          100,
	}
}

func TestCreateRequiresExplicitStore(t *testing.T) {
	records, stores, _ := reportFixtures()
	svc := NewRecordService(records, stores, nil, nil)
	ctx := context.Background()

	record := validRecord("")
	err := svc.Create(ctx, domain.NewAdminIdentity("1", "Administrador"), record)
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 400, domainErr.HTTPStatus, "missing store is a validation error, never a silent default")
	assert.Contains(t, domainErr.Details, "storeId")
}

func TestCreateCrossStoreDenied(t *testing.T) {
	records, stores, _ := reportFixtures()
	svc := NewRecordService(records, stores, nil, nil)
	ctx := context.Background()
	storeIdentity := domain.NewStoreIdentity("u-42", "GP Interlagos", "GPInterlagos")

	err := svc.Create(ctx, storeIdentity, validRecord("GPMorumbi"))
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.ToDomainError(err).HTTPStatus)

	err = svc.Create(ctx, storeIdentity, validRecord("GPInterlagos"))
	assert.NoError(t, err)
}

func TestCreateUnknownStoreRejected(t *testing.T) {
	records, stores, _ := reportFixtures()
	svc := NewRecordService(records, stores, nil, nil)

	err := svc.Create(context.Background(), domain.NewAdminIdentity("1", "Administrador"), validRecord("GPNowhere"))
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestListPinsStoreCallers(t *testing.T) {
	records, stores, _ := reportFixtures()
	svc := NewRecordService(records, stores, nil, nil)
	ctx := context.Background()
	storeIdentity := domain.NewStoreIdentity("u-42", "GP Interlagos", "GPInterlagos")

	listed, err := svc.List(ctx, storeIdentity, repository.ServiceFilter{})
	require.NoError(t, err)
	for _, record := range listed {
		assert.Equal(t, "GPInterlagos", record.StoreID)
	}

	_, err = svc.List(ctx, storeIdentity, repository.ServiceFilter{StoreID: "GPMorumbi"})
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.ToDomainError(err).HTTPStatus)

	all, err := svc.List(ctx, domain.NewAdminIdentity("1", "Administrador"), repository.ServiceFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestGetForeignRecordReadsAsNotFound(t *testing.T) {
	records, stores, _ := reportFixtures()
	svc := NewRecordService(records, stores, nil, nil)
	ctx := context.Background()
	storeIdentity := domain.NewStoreIdentity("u-42", "GP Interlagos", "GPInterlagos")

	_, err := svc.Get(ctx, storeIdentity, "s-4")
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus, "foreign records are indistinguishable from missing ones")

	record, err := svc.Get(ctx, storeIdentity, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "ELEV-01", record.MachineCode)
}

func TestUpdateCannotMoveRecordToForeignStore(t *testing.T) {
	records, stores, _ := reportFixtures()
	svc := NewRecordService(records, stores, nil, nil)
	ctx := context.Background()
	storeIdentity := domain.NewStoreIdentity("u-42", "GP Interlagos", "GPInterlagos")

	update := validRecord("GPMorumbi")
	update.ID = "s-1"
	err := svc.Update(ctx, storeIdentity, update)
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.ToDomainError(err).HTTPStatus)
}

func TestUpdateWithoutStatusKeepsExisting(t *testing.T) {
	records, stores, _ := reportFixtures()
	svc := NewRecordService(records, stores, nil, nil)
	ctx := context.Background()
	storeIdentity := domain.NewStoreIdentity("u-42", "GP Interlagos", "GPInterlagos")

	// s-2 is pending; a PUT that omits status must not blank it out.
	update := validRecord("GPInterlagos")
	update.ID = "s-2"
	update.Cost = 300
	require.Empty(t, update.Status)

	require.NoError(t, svc.Update(ctx, storeIdentity, update))

	stored, err := svc.Get(ctx, storeIdentity, "s-2")
	require.NoError(t, err)
	assert.Equal(t, domain.ServiceStatusPending, stored.Status, "existing status carries forward")
	assert.InDelta(t, 300.0, stored.Cost, 1e-9)

	update.Status = domain.ServiceStatusCompleted
	require.NoError(t, svc.Update(ctx, storeIdentity, update))
	stored, err = svc.Get(ctx, storeIdentity, "s-2")
	require.NoError(t, err)
	assert.Equal(t, domain.ServiceStatusCompleted, stored.Status)
}

func TestSearchRequiresCriterion(t *testing.T) {
	records, stores, _ := reportFixtures()
	svc := NewRecordService(records, stores, nil, nil)

	_, err := svc.Search(context.Background(), domain.NewAdminIdentity("1", "Administrador"), "", nil)
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestSearchByMachineFragmentAndDay(t *testing.T) {
	records, stores, _ := reportFixtures()
	svc := NewRecordService(records, stores, nil, nil)
	ctx := context.Background()
	admin := domain.NewAdminIdentity("1", "Administrador")

	found, err := svc.Search(ctx, admin, "elev", nil)
	require.NoError(t, err)
	assert.Len(t, found, 3, "fragment match is case-insensitive")

	onDay := day("2024-03-12")
	found, err = svc.Search(ctx, admin, "", &onDay)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "s-4", found[0].ID)

	storeIdentity := domain.NewStoreIdentity("u-42", "GP Interlagos", "GPInterlagos")
	found, err = svc.Search(ctx, storeIdentity, "ELEV", nil)
	require.NoError(t, err)
	assert.Len(t, found, 2, "store callers only search their own store")
}

func TestDeleteScoped(t *testing.T) {
	records, stores, _ := reportFixtures()
	svc := NewRecordService(records, stores, nil, nil)
	ctx := context.Background()
	storeIdentity := domain.NewStoreIdentity("u-42", "GP Interlagos", "GPInterlagos")

	err := svc.Delete(ctx, storeIdentity, "s-4")
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus)

	require.NoError(t, svc.Delete(ctx, storeIdentity, "s-1"))
	_, err = svc.Get(ctx, storeIdentity, "s-1")
	assert.Error(t, err)
}
