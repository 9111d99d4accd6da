package util

import (
	"reflect"
	"testing"
)

func TestParseBoolEnv(t *testing.T) {
	t.Setenv("LB_TEST_BOOL", "yes")
	if !ParseBoolEnv("LB_TEST_BOOL", false) {
		t.Error("expected true for 'yes'")
	}
	t.Setenv("LB_TEST_BOOL", "garbage")
	if ParseBoolEnv("LB_TEST_BOOL", false) {
		t.Error("expected default for invalid value")
	}
	if !ParseBoolEnv("LB_TEST_BOOL_UNSET", true) {
		t.Error("expected default for unset variable")
	}
}

func TestParseIntEnv(t *testing.T) {
	t.Setenv("LB_TEST_INT", "500")
	if got := ParseIntEnv("LB_TEST_INT", 1000); got != 500 {
		t.Errorf("expected 500, got %d", got)
	}
	t.Setenv("LB_TEST_INT", "not-a-number")
	if got := ParseIntEnv("LB_TEST_INT", 1000); got != 1000 {
		t.Errorf("expected default 1000, got %d", got)
	}
}

func TestParseListEnv(t *testing.T) {
	t.Setenv("LB_TEST_LIST", "a.com, b.com ,,c.com")
	got := ParseListEnv("LB_TEST_LIST", nil)
	if !reflect.DeepEqual(got, []string{"a.com", "b.com", "c.com"}) {
		t.Errorf("unexpected list: %v", got)
	}
	def := []string{"x.com"}
	if got := ParseListEnv("LB_TEST_LIST_UNSET", def); !reflect.DeepEqual(got, def) {
		t.Errorf("expected default list, got %v", got)
	}
}
