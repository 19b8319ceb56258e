package services

import (
	"context"
	"testing"
	"time"

	"omnioracle/internal/models"
)

func TestSimulatedOracleVerifies(t *testing.T) {
	oracle := NewSimulatedOracle()
	oracle.Latency = 0
	oracle.ConflictRate = 0

	source := models.OracleSource{Name: "CoinGecko API", SourceType: models.OracleTypeAPI, Status: models.OracleStatusPending}
	result, err := oracle.Fetch(context.Background(), source)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if result.Status != models.OracleStatusVerified {
		t.Fatalf("expected VERIFIED with zero conflict rate, got %s", result.Status)
	}
	if result.ReportedValue == nil || !result.ReportedValue.Valid() {
		t.Error("verified result must carry a valid reported value")
	}
	if result.FetchedAt == nil {
		t.Error("fetch must stamp the completion time")
	}
}

func TestSimulatedOracleConflicts(t *testing.T) {
	oracle := NewSimulatedOracle()
	oracle.Latency = 0
	oracle.ConflictRate = 1

	result, err := oracle.Fetch(context.Background(), models.OracleSource{Status: models.OracleStatusPending})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if result.Status != models.OracleStatusConflict {
		t.Fatalf("expected CONFLICT, got %s", result.Status)
	}
	if result.ReportedValue != nil {
		t.Error("conflicted result must not carry a reported value")
	}
}

func TestSimulatedOracleHonorsContext(t *testing.T) {
	oracle := NewSimulatedOracle()
	oracle.Latency = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := oracle.Fetch(ctx, models.OracleSource{}); err == nil {
		t.Fatal("expected context error on timeout")
	}
}

func TestDetectAnomalies(t *testing.T) {
	verified := func(o models.Outcome) models.OracleSource {
		return models.OracleSource{Status: models.OracleStatusVerified, ReportedValue: outcomePtr(o)}
	}
	conflicted := models.OracleSource{Status: models.OracleStatusConflict}

	cases := []struct {
		name    string
		sources []models.OracleSource
		want    bool
	}{
		{"single verified read", []models.OracleSource{verified(models.OutcomeYes)}, false},
		{"agreeing sources", []models.OracleSource{verified(models.OutcomeYes), verified(models.OutcomeYes)}, false},
		{"disagreeing sources", []models.OracleSource{verified(models.OutcomeYes), verified(models.OutcomeNo)}, true},
		{"no verified reads", []models.OracleSource{conflicted, conflicted}, true},
		{"empty consultation", nil, true},
		{"mixed with agreement", []models.OracleSource{verified(models.OutcomeNo), conflicted, verified(models.OutcomeNo)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectAnomalies(tc.sources); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
