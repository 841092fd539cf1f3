package helpers

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{42.5, "42.5"},
		{0, "0"},
		{1.0 / 3, "0.3333333333333333"},
		{123456789.5, "123456789.5"},
		{-2, "-2"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFloat(tt.in))
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	local := time.Date(2025, 12, 31, 23, 59, 58, 999_999_999, time.Local)
	utc := time.Date(2025, 6, 15, 12, 30, 45, 500_000_000, time.UTC)
	shifted := utc.Local()

	tests := []struct {
		name string
		ts   time.Time
		want string
	}{
		{"local time truncated to seconds", local, "2025-12-31 23:59:58"},
		{"utc converted to local", utc, fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d",
			shifted.Year(), shifted.Month(), shifted.Day(), shifted.Hour(), shifted.Minute(), shifted.Second())},
		{"fixed zone converted to local", utc.In(time.FixedZone("UTC+5", 5*3600)), FormatTimestamp(utc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTimestamp(tt.ts))
		})
	}
}
