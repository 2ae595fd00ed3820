package config

import "testing"

func TestBudgetChars(t *testing.T) {
	tests := []struct {
		tokens int
		want   int
	}{
		{16000, 44800},
		{128000, 358400},
		{100, 1000}, // floor keeps tiny windows usable
		{0, 1000},
	}
	for _, tt := range tests {
		c := &Config{ContextTokens: tt.tokens}
		if got := c.BudgetChars(); got != tt.want {
			t.Errorf("BudgetChars(%d tokens) = %d, want %d", tt.tokens, got, tt.want)
		}
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("FLASHGEN_TEST_INT", "42")
	if got := getEnvInt("FLASHGEN_TEST_INT", 7); got != 42 {
		t.Fatalf("got %d", got)
	}
	if got := getEnvInt("FLASHGEN_TEST_UNSET", 7); got != 7 {
		t.Fatalf("default not used: %d", got)
	}
	t.Setenv("FLASHGEN_TEST_INT", "not-a-number")
	if got := getEnvInt("FLASHGEN_TEST_INT", 7); got != 7 {
		t.Fatalf("bad value must fall back to default, got %d", got)
	}
}
