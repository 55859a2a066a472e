package memory

import (
	"os"
	"runtime/debug"
	"testing"
)

func TestConfigureFromEnv_NoEnvironmentVariables(t *testing.T) {
	oldGoMemLimit := os.Getenv("GOMEMLIMIT")
	oldMemLimit := os.Getenv("MEMORY_LIMIT")
	oldMemRatio := os.Getenv("MEMORY_RATIO")
	defer func() {
		os.Setenv("GOMEMLIMIT", oldGoMemLimit)
		os.Setenv("MEMORY_LIMIT", oldMemLimit)
		os.Setenv("MEMORY_RATIO", oldMemRatio)
	}()

	os.Unsetenv("GOMEMLIMIT")
	os.Unsetenv("MEMORY_LIMIT")
	os.Unsetenv("MEMORY_RATIO")

	result := ConfigureFromEnv()

	if result.Configured {
		t.Error("Expected Configured to be false when no env vars set")
	}
	if result.Source != "none" {
		t.Errorf("Expected Source to be 'none', got %q", result.Source)
	}
	if result.ContainerLimit != 0 || result.GoMemLimit != 0 || result.Ratio != 0 {
		t.Errorf("Expected zero result, got %+v", result)
	}
}

func TestConfigureFromEnv_MEMORYLIMITSet(t *testing.T) {
	oldGoMemLimit := os.Getenv("GOMEMLIMIT")
	oldMemLimit := os.Getenv("MEMORY_LIMIT")
	oldMemRatio := os.Getenv("MEMORY_RATIO")
	defer func() {
		os.Setenv("GOMEMLIMIT", oldGoMemLimit)
		os.Setenv("MEMORY_LIMIT", oldMemLimit)
		os.Setenv("MEMORY_RATIO", oldMemRatio)
		debug.SetMemoryLimit(-1)
	}()

	os.Unsetenv("GOMEMLIMIT")
	os.Setenv("MEMORY_LIMIT", "1073741824")
	os.Unsetenv("MEMORY_RATIO")

	result := ConfigureFromEnv()

	if !result.Configured {
		t.Error("Expected Configured to be true when MEMORY_LIMIT is set")
	}
	if result.Source != "MEMORY_LIMIT" {
		t.Errorf("Expected Source to be 'MEMORY_LIMIT', got %q", result.Source)
	}
	if result.ContainerLimit != 1073741824 {
		t.Errorf("Expected ContainerLimit to be 1073741824, got %d", result.ContainerLimit)
	}

	expectedGoMemLimit := int64(float64(1073741824) * DefaultMemoryRatio)
	if result.GoMemLimit != expectedGoMemLimit {
		t.Errorf("Expected GoMemLimit to be %d, got %d", expectedGoMemLimit, result.GoMemLimit)
	}
	if result.Ratio != DefaultMemoryRatio {
		t.Errorf("Expected Ratio to be %f, got %f", DefaultMemoryRatio, result.Ratio)
	}
}

func TestConfigureFromEnv_CustomRatio(t *testing.T) {
	oldGoMemLimit := os.Getenv("GOMEMLIMIT")
	oldMemLimit := os.Getenv("MEMORY_LIMIT")
	oldMemRatio := os.Getenv("MEMORY_RATIO")
	defer func() {
		os.Setenv("GOMEMLIMIT", oldGoMemLimit)
		os.Setenv("MEMORY_LIMIT", oldMemLimit)
		os.Setenv("MEMORY_RATIO", oldMemRatio)
		debug.SetMemoryLimit(-1)
	}()

	os.Unsetenv("GOMEMLIMIT")
	os.Setenv("MEMORY_LIMIT", "2147483648")
	os.Setenv("MEMORY_RATIO", "0.5")

	result := ConfigureFromEnv()

	if !result.Configured {
		t.Error("Expected Configured to be true")
	}
	if result.Ratio != 0.5 {
		t.Errorf("Expected Ratio to be 0.5, got %f", result.Ratio)
	}
	if result.GoMemLimit != 1073741824 {
		t.Errorf("Expected GoMemLimit to be 1073741824, got %d", result.GoMemLimit)
	}
}

func TestConfigureFromEnv_InvalidMEMORYLIMIT(t *testing.T) {
	oldGoMemLimit := os.Getenv("GOMEMLIMIT")
	oldMemLimit := os.Getenv("MEMORY_LIMIT")
	defer func() {
		os.Setenv("GOMEMLIMIT", oldGoMemLimit)
		os.Setenv("MEMORY_LIMIT", oldMemLimit)
	}()

	os.Unsetenv("GOMEMLIMIT")
	os.Setenv("MEMORY_LIMIT", "not-a-number")

	result := ConfigureFromEnv()

	if result.Configured {
		t.Error("Expected Configured to be false when MEMORY_LIMIT is invalid")
	}
	if result.Source != "none" {
		t.Errorf("Expected Source to be 'none', got %q", result.Source)
	}
}

func TestConfigureFromEnv_InvalidRatio(t *testing.T) {
	tests := []struct {
		name          string
		ratioValue    string
		expectDefault bool
	}{
		{"Not a number", "not-a-number", true},
		{"Zero ratio", "0", true},
		{"Negative ratio", "-0.5", true},
		{"Ratio greater than 1", "1.5", true},
		{"Valid ratio at boundary", "1.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldGoMemLimit := os.Getenv("GOMEMLIMIT")
			oldMemLimit := os.Getenv("MEMORY_LIMIT")
			oldMemRatio := os.Getenv("MEMORY_RATIO")
			defer func() {
				os.Setenv("GOMEMLIMIT", oldGoMemLimit)
				os.Setenv("MEMORY_LIMIT", oldMemLimit)
				os.Setenv("MEMORY_RATIO", oldMemRatio)
				debug.SetMemoryLimit(-1)
			}()

			os.Unsetenv("GOMEMLIMIT")
			os.Setenv("MEMORY_LIMIT", "1073741824")
			os.Setenv("MEMORY_RATIO", tt.ratioValue)

			result := ConfigureFromEnv()

			if !result.Configured {
				t.Error("Expected Configured to be true even with invalid ratio")
			}
			if tt.expectDefault && result.Ratio != DefaultMemoryRatio {
				t.Errorf("Expected default ratio %f, got %f", DefaultMemoryRatio, result.Ratio)
			}
			if !tt.expectDefault && result.Ratio != 1.0 {
				t.Errorf("Expected ratio 1.0, got %f", result.Ratio)
			}
		})
	}
}
