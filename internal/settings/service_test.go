package settings

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mleong/mangobox-backend/pkg/db/models"
	pkgerrors "github.com/mleong/mangobox-backend/pkg/errors"
)

type stubSettingsRepo struct {
	options  map[string]*models.DeliveryOption
	areaFees map[string]*models.DeliveryAreaFee // key: area|option
	methods  map[string]*models.PaymentMethod
	upserted *models.DeliveryAreaFee
}

func newStubSettingsRepo() *stubSettingsRepo {
	return &stubSettingsRepo{
		options:  map[string]*models.DeliveryOption{},
		areaFees: map[string]*models.DeliveryAreaFee{},
		methods:  map[string]*models.PaymentMethod{},
	}
}

func (r *stubSettingsRepo) ListDeliveryOptions(context.Context) ([]models.DeliveryOption, error) {
	var out []models.DeliveryOption
	for _, o := range r.options {
		out = append(out, *o)
	}
	return out, nil
}

func (r *stubSettingsRepo) GetDeliveryOption(_ context.Context, id string) (*models.DeliveryOption, error) {
	if o, ok := r.options[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSettingsRepo) GetDefaultDeliveryOption(context.Context) (*models.DeliveryOption, error) {
	for _, o := range r.options {
		if o.IsDefault {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSettingsRepo) UpdateDeliveryOption(_ context.Context, option *models.DeliveryOption) (*models.DeliveryOption, error) {
	r.options[option.ID] = option
	return option, nil
}

func (r *stubSettingsRepo) GetAreaFee(_ context.Context, area, optionID string) (*models.DeliveryAreaFee, error) {
	if f, ok := r.areaFees[area+"|"+optionID]; ok {
		return f, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSettingsRepo) ListAreaFees(context.Context) ([]models.DeliveryAreaFee, error) {
	var out []models.DeliveryAreaFee
	for _, f := range r.areaFees {
		out = append(out, *f)
	}
	return out, nil
}

func (r *stubSettingsRepo) UpsertAreaFee(_ context.Context, fee *models.DeliveryAreaFee) (*models.DeliveryAreaFee, error) {
	r.upserted = fee
	r.areaFees[fee.Area+"|"+fee.DeliveryOptionID] = fee
	return fee, nil
}

func (r *stubSettingsRepo) DeleteAreaFee(context.Context, int64) error { return nil }

func (r *stubSettingsRepo) ListPaymentMethods(context.Context) ([]models.PaymentMethod, error) {
	var out []models.PaymentMethod
	for _, m := range r.methods {
		out = append(out, *m)
	}
	return out, nil
}

func (r *stubSettingsRepo) GetPaymentMethod(_ context.Context, id string) (*models.PaymentMethod, error) {
	if m, ok := r.methods[id]; ok {
		return m, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func seedOptions(repo *stubSettingsRepo) {
	repo.options["grab"] = &models.DeliveryOption{ID: "grab", Label: "Grab", BaseFee: dec("15"), IsDefault: true}
	repo.options["lalamove"] = &models.DeliveryOption{ID: "lalamove", Label: "Lalamove", BaseFee: dec("0")}
	repo.options["pickup"] = &models.DeliveryOption{ID: "pickup", Label: "Self pickup", BaseFee: dec("0"), Pickup: true}
}

func area(s string) *string { return &s }

func TestResolveDeliveryFeeUnknownOption(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(newStubSettingsRepo())

	_, err := svc.ResolveDeliveryFee(context.Background(), "teleport", nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolveDeliveryFeePickupUsesBaseFee(t *testing.T) {
	t.Parallel()

	repo := newStubSettingsRepo()
	seedOptions(repo)
	svc, _ := NewService(repo)

	fee, err := svc.ResolveDeliveryFee(context.Background(), "pickup", area("Bangsar"))
	if err != nil {
		t.Fatalf("ResolveDeliveryFee: %v", err)
	}
	if !fee.Equal(decimal.Zero) {
		t.Fatalf("pickup fee should be base fee, got %s", fee)
	}
}

func TestResolveDeliveryFeeAreaOverrideWins(t *testing.T) {
	t.Parallel()

	repo := newStubSettingsRepo()
	seedOptions(repo)
	repo.areaFees["Bangsar|grab"] = &models.DeliveryAreaFee{Area: "Bangsar", DeliveryOptionID: "grab", Fee: dec("22")}
	svc, _ := NewService(repo)

	fee, err := svc.ResolveDeliveryFee(context.Background(), "grab", area("Bangsar"))
	if err != nil {
		t.Fatalf("ResolveDeliveryFee: %v", err)
	}
	if !fee.Equal(dec("22")) {
		t.Fatalf("expected override 22, got %s", fee)
	}
}

func TestResolveDeliveryFeeFallsBackToOptionBaseFee(t *testing.T) {
	t.Parallel()

	repo := newStubSettingsRepo()
	seedOptions(repo)
	svc, _ := NewService(repo)

	fee, err := svc.ResolveDeliveryFee(context.Background(), "grab", area("Unmapped Area"))
	if err != nil {
		t.Fatalf("ResolveDeliveryFee: %v", err)
	}
	if !fee.Equal(dec("15")) {
		t.Fatalf("expected base fee 15, got %s", fee)
	}
}

func TestResolveDeliveryFeeFallsBackToDefaultOption(t *testing.T) {
	t.Parallel()

	repo := newStubSettingsRepo()
	seedOptions(repo)
	svc, _ := NewService(repo)

	// lalamove has a zero base fee, the default (grab) covers it
	fee, err := svc.ResolveDeliveryFee(context.Background(), "lalamove", nil)
	if err != nil {
		t.Fatalf("ResolveDeliveryFee: %v", err)
	}
	if !fee.Equal(dec("15")) {
		t.Fatalf("expected default option fee 15, got %s", fee)
	}
}

func TestRequireEnabledPaymentMethod(t *testing.T) {
	t.Parallel()

	repo := newStubSettingsRepo()
	repo.methods["cod"] = &models.PaymentMethod{ID: "cod", Label: "Cash on delivery", Enabled: true}
	repo.methods["e_wallet"] = &models.PaymentMethod{ID: "e_wallet", Label: "E-wallet", Enabled: false}
	svc, _ := NewService(repo)

	if err := svc.RequireEnabledPaymentMethod(context.Background(), "cod"); err != nil {
		t.Fatalf("enabled method rejected: %v", err)
	}

	err := svc.RequireEnabledPaymentMethod(context.Background(), "e_wallet")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("disabled method should fail validation, got %v", err)
	}

	err = svc.RequireEnabledPaymentMethod(context.Background(), "crypto")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unknown method should fail validation, got %v", err)
	}
}

func TestSetAreaFeeValidation(t *testing.T) {
	t.Parallel()

	repo := newStubSettingsRepo()
	seedOptions(repo)
	svc, _ := NewService(repo)

	_, err := svc.SetAreaFee(context.Background(), AreaFeeInput{Area: " ", DeliveryOptionID: "grab", Fee: dec("10")})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("blank area should fail, got %v", err)
	}

	_, err = svc.SetAreaFee(context.Background(), AreaFeeInput{Area: "Bangsar", DeliveryOptionID: "grab", Fee: dec("-1")})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("negative fee should fail, got %v", err)
	}

	_, err = svc.SetAreaFee(context.Background(), AreaFeeInput{Area: "Bangsar", DeliveryOptionID: "teleport", Fee: dec("10")})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unknown option should fail, got %v", err)
	}

	set, err := svc.SetAreaFee(context.Background(), AreaFeeInput{Area: " Bangsar ", DeliveryOptionID: "grab", Fee: dec("18")})
	if err != nil {
		t.Fatalf("SetAreaFee: %v", err)
	}
	if set.Area != "Bangsar" {
		t.Fatalf("area should be trimmed, got %q", set.Area)
	}
}
