package registry_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/carbonguardian/carbonguardian/internal/registry"
)

func newTestService(t *testing.T) *registry.Service {
	t.Helper()

	buildings := registry.NewInMemoryBuildingRepository()
	for _, b := range registry.SeedBuildings(time.Now()) {
		if err := buildings.Create(context.Background(), b); err != nil {
			t.Fatalf("seed building %s: %v", b.Code, err)
		}
	}
	parameters := registry.NewInMemoryParameterRepository(registry.DefaultParameters())
	return registry.NewService(buildings, parameters)
}

func TestService_ResolveBuilding(t *testing.T) {
	svc := newTestService(t)

	b, err := svc.ResolveBuilding(context.Background(), "FJ-XZ-01")
	if err != nil {
		t.Fatalf("resolve building: %v", err)
	}
	if b.Status != registry.BuildingActive {
		t.Errorf("expected active building, got %q", b.Status)
	}
	if b.Organization == "" {
		t.Error("expected an organization on the seeded building")
	}
}

func TestService_ResolveBuilding_Unknown(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.ResolveBuilding(context.Background(), "XX-ZZ-99"); !errors.Is(err, registry.ErrBuildingNotFound) {
		t.Errorf("expected ErrBuildingNotFound, got %v", err)
	}
}

func TestService_ResolveParameter(t *testing.T) {
	svc := newTestService(t)

	p, err := svc.ResolveParameter(context.Background(), "electricity")
	if err != nil {
		t.Fatalf("resolve parameter: %v", err)
	}
	if p.DefaultUnit != "kWh" {
		t.Errorf("expected default unit kWh, got %q", p.DefaultUnit)
	}
	if !p.AllowsUnit("MWh") {
		t.Error("expected MWh to be a legal electricity unit")
	}
	if p.AllowsUnit("m³") {
		t.Error("m³ must not be a legal electricity unit")
	}

	if _, err := svc.ResolveParameter(context.Background(), "coal"); !errors.Is(err, registry.ErrParameterNotFound) {
		t.Errorf("expected ErrParameterNotFound, got %v", err)
	}
}

func TestService_ListBuildings(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	all, err := svc.ListBuildings(ctx, "")
	if err != nil {
		t.Fatalf("list buildings: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 seeded buildings, got %d", len(all))
	}
	// Sorted by code.
	if all[0].Code != "FJ-HB-02" || all[4].Code != "FZ-HZ-04" {
		t.Errorf("expected code-sorted listing, got %q ... %q", all[0].Code, all[4].Code)
	}

	byOrg, err := svc.ListBuildings(ctx, "福州市人民政府")
	if err != nil {
		t.Fatalf("list by org: %v", err)
	}
	if len(byOrg) != 2 {
		t.Errorf("expected 2 buildings for the municipal government, got %d", len(byOrg))
	}
}

func TestService_ListParameters(t *testing.T) {
	svc := newTestService(t)

	params, err := svc.ListParameters(context.Background())
	if err != nil {
		t.Fatalf("list parameters: %v", err)
	}
	if len(params) != 5 {
		t.Fatalf("expected 5 parameters, got %d", len(params))
	}

	types := make(map[string]bool, len(params))
	for _, p := range params {
		types[p.DataType] = true
	}
	for _, want := range []string{"electricity", "natural_gas", "lpg", "chemical", "diesel"} {
		if !types[want] {
			t.Errorf("expected parameter %q in catalog", want)
		}
	}
}

func TestService_CreateBuilding(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	b, err := svc.CreateBuilding(ctx, registry.CreateBuildingInput{
		Code:         "XM-SW-06",
		Name:         "厦门软件园三期A栋",
		Type:         "office",
		AreaM2:       27400,
		Organization: "厦门市工业和信息化局",
		Lat:          24.6210,
		Lon:          118.1853,
	})
	if err != nil {
		t.Fatalf("create building: %v", err)
	}
	if !strings.HasPrefix(b.ID, "bld_") {
		t.Errorf("expected building ID to start with 'bld_', got %q", b.ID)
	}
	if b.Status != registry.BuildingActive {
		t.Errorf("new buildings start active, got %q", b.Status)
	}

	resolved, err := svc.ResolveBuilding(ctx, "XM-SW-06")
	if err != nil {
		t.Fatalf("resolve new building: %v", err)
	}
	if resolved.ID != b.ID {
		t.Errorf("expected resolved ID %q, got %q", b.ID, resolved.ID)
	}
}

func TestService_CreateBuilding_DuplicateCode(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateBuilding(context.Background(), registry.CreateBuildingInput{
		Code: "FJ-XZ-01",
		Name: "重复编码大楼",
	})
	if !errors.Is(err, registry.ErrDuplicateCode) {
		t.Errorf("expected ErrDuplicateCode, got %v", err)
	}
}

func TestService_SetBuildingStatus(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	b, err := svc.ResolveBuilding(ctx, "FZ-HZ-04")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	updated, err := svc.SetBuildingStatus(ctx, b.ID, registry.BuildingMaintenance)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if updated.Status != registry.BuildingMaintenance {
		t.Errorf("expected maintenance status, got %q", updated.Status)
	}
	if !updated.UpdatedAt.After(b.UpdatedAt) {
		t.Error("expected UpdatedAt to advance")
	}

	if _, err := svc.SetBuildingStatus(ctx, "bld_missing", registry.BuildingInactive); !errors.Is(err, registry.ErrBuildingNotFound) {
		t.Errorf("expected ErrBuildingNotFound, got %v", err)
	}
}
