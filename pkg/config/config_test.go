package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func testViper(overrides map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(testViper(nil), "test")
	if err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	if cfg.MongoDatabaseName != DefaultMongoDatabaseName {
		t.Errorf("MongoDatabaseName = %s", cfg.MongoDatabaseName)
	}
	if cfg.AdvisoryAutoAdvanceDelay != 5*time.Second {
		t.Errorf("AdvisoryAutoAdvanceDelay = %s", cfg.AdvisoryAutoAdvanceDelay)
	}
	if cfg.PaymentProvider != PaymentProviderSimulated {
		t.Errorf("PaymentProvider = %s", cfg.PaymentProvider)
	}
	if cfg.Location().String() != DefaultTimezone {
		t.Errorf("Location() = %s", cfg.Location())
	}
	if cfg.Log == nil || cfg.Client == nil || cfg.Kafka == nil {
		t.Errorf("expected logger, client and kafka config to be set")
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(testViper(map[string]any{
		EnvPort:                     "9090",
		EnvCurrency:                 "LKR",
		EnvAdvisoryAutoAdvanceDelay: "250ms",
		EnvPaymentFailureRate:       "0.25",
		EnvSessionStore:             "Memory",
	}), "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "9090" || cfg.Currency != "lkr" {
		t.Errorf("unexpected port/currency: %s %s", cfg.Port, cfg.Currency)
	}
	if cfg.AdvisoryAutoAdvanceDelay != 250*time.Millisecond {
		t.Errorf("AdvisoryAutoAdvanceDelay = %s", cfg.AdvisoryAutoAdvanceDelay)
	}
	if cfg.PaymentFailureRate != 0.25 {
		t.Errorf("PaymentFailureRate = %g", cfg.PaymentFailureRate)
	}
	if cfg.SessionStore != SessionStoreMemory {
		t.Errorf("SessionStore = %s", cfg.SessionStore)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	_, err := LoadFrom(testViper(map[string]any{
		EnvPort:              "0",
		EnvMongoURI:          "postgres://nope",
		EnvTimezone:          "Mars/Olympus",
		EnvPaymentProvider:   "paypal",
		EnvSessionStore:      "etcd",
		EnvAdvisoryAlertRate: "1.5",
		EnvBackendTimeout:    "0s",
		EnvRateLimitRequests: 0,
	}), "test")
	if err == nil {
		t.Fatal("expected validation error")
	}

	for _, want := range []string{"Port", "MongoURI", "Timezone", "PaymentProvider", "SessionStore", "AdvisoryAlertRate", "BackendTimeout", "RateLimitRequests"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %s, got:\n%s", want, err)
		}
	}
}

func TestValidate_StripeRequiresKey(t *testing.T) {
	_, err := LoadFrom(testViper(map[string]any{EnvPaymentProvider: "stripe"}), "test")
	if err == nil || !strings.Contains(err.Error(), "StripeSecretKey") {
		t.Fatalf("expected stripe key error, got %v", err)
	}

	_, err = LoadFrom(testViper(map[string]any{
		EnvPaymentProvider: "stripe",
		EnvStripeSecretKey: "sk_test_123",
	}), "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRedactMongoURI(t *testing.T) {
	got := redactMongoURI("mongodb://admin:secret@db:27017/vintrek")
	if got != "mongodb://***:***@db:27017/vintrek" {
		t.Errorf("redactMongoURI() = %s", got)
	}
}
