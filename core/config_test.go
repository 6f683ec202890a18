package core

import (
	"errors"
	"testing"
)

// TestValidateClassConfigs verifies construction-time validation
// Given: Class config lists with assorted defects
// When: ValidateClassConfigs runs
// Then: each defect is rejected with ErrInvalidConfig; a valid list passes
func TestValidateClassConfigs(t *testing.T) {
	valid := []ClassConfig{
		{Class: TaskClassHigh, PriorityThreshold: 10, MaxThreads: 16},
		{Class: TaskClassMedium, PriorityThreshold: 4, MaxThreads: 12},
		{Class: TaskClassLow, PriorityThreshold: 1, MaxThreads: 1},
	}

	cases := []struct {
		name    string
		configs []ClassConfig
		total   int
		wantErr bool
	}{
		{"valid list", valid, 16, false},
		{"nil list", nil, 16, true},
		{"short list", valid[:2], 16, true},
		{"zero total threads", valid, 0, true},
		{
			"out of order",
			[]ClassConfig{valid[1], valid[0], valid[2]},
			16, true,
		},
		{
			"threshold above ceiling",
			[]ClassConfig{
				{Class: TaskClassHigh, PriorityThreshold: 17, MaxThreads: 16},
				valid[1], valid[2],
			},
			16, true,
		},
		{
			"ceiling above pool size",
			[]ClassConfig{
				{Class: TaskClassHigh, PriorityThreshold: 10, MaxThreads: 32},
				valid[1], valid[2],
			},
			16, true,
		},
		{
			"zero max threads",
			[]ClassConfig{
				valid[0], valid[1],
				{Class: TaskClassLow, PriorityThreshold: 0, MaxThreads: 0},
			},
			16, true,
		},
		{
			"negative threshold",
			[]ClassConfig{
				valid[0], valid[1],
				{Class: TaskClassLow, PriorityThreshold: -1, MaxThreads: 1},
			},
			16, true,
		},
		{
			"threshold equal to ceiling is allowed",
			[]ClassConfig{
				{Class: TaskClassHigh, PriorityThreshold: 16, MaxThreads: 16},
				valid[1], valid[2],
			},
			16, false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateClassConfigs(tc.configs, tc.total)
			if tc.wantErr {
				if err == nil {
					t.Fatal("ValidateClassConfigs() = nil, want error")
				}
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("error %v does not match ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateClassConfigs() error = %v", err)
			}
		})
	}
}

// TestNewClassQueues_ConcurrentThreadValidation verifies the concurrency cap bounds
// Given: A valid class list
// When: NewClassQueues runs with out-of-range concurrentThreads
// Then: construction fails synchronously
func TestNewClassQueues_ConcurrentThreadValidation(t *testing.T) {
	configs := []ClassConfig{
		{Class: TaskClassHigh, PriorityThreshold: 2, MaxThreads: 4},
		{Class: TaskClassMedium, PriorityThreshold: 1, MaxThreads: 3},
		{Class: TaskClassLow, PriorityThreshold: 1, MaxThreads: 1},
	}

	if _, err := NewClassQueues(configs, 4, 5); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("concurrent > total: error = %v, want ErrInvalidConfig", err)
	}
	if _, err := NewClassQueues(configs, 4, -1); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("negative concurrent: error = %v, want ErrInvalidConfig", err)
	}
	if _, err := NewClassQueues(configs, 4, 0); err != nil {
		t.Errorf("zero concurrent (unbounded): error = %v", err)
	}
}
