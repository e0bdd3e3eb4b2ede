package outcome

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResult_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   bool
	}{
		{"success is valid", ResultSuccess, true},
		{"failure is valid", ResultFailure, true},
		{"pending is valid", ResultPending, true},
		{"ignored is valid", ResultIgnored, true},
		{"skipped is valid", ResultSkipped, true},
		{"invalid result", Result("BROKEN"), false},
		{"empty result", Result(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.IsValid())
		})
	}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name    string
		results []Result
		want    Result
	}{
		{"no results is success", nil, ResultSuccess},
		{"all success", []Result{ResultSuccess, ResultSuccess}, ResultSuccess},
		{"failure beats everything", []Result{ResultSuccess, ResultPending, ResultFailure, ResultSkipped}, ResultFailure},
		{"pending beats skipped", []Result{ResultSkipped, ResultPending}, ResultPending},
		{"skipped beats ignored", []Result{ResultIgnored, ResultSkipped, ResultSuccess}, ResultSkipped},
		{"ignored beats success", []Result{ResultSuccess, ResultIgnored}, ResultIgnored},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Aggregate(tt.results...))
		})
	}
}
