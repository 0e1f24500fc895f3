package main

import (
	"slices"
	"testing"

	"github.com/stemsi/exstem-quiz/internal/model"
)

func TestParsePermissions(t *testing.T) {
	all, err := parsePermissions("  \n")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != len(model.AllPermissions) {
		t.Errorf("default permissions = %v", all)
	}

	got, err := parsePermissions("results:read, exams:read,\n")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []string{"results:read", "exams:read"}) {
		t.Errorf("permissions = %v", got)
	}

	if _, err := parsePermissions("results:write"); err == nil {
		t.Error("expected error for unknown permission")
	}
}
