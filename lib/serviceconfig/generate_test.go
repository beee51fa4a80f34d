// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

package serviceconfig

import (
	"errors"
	"strings"
	"testing"

	"github.com/terrapoint-foundation/terrapoint/lib/extent"
	"github.com/terrapoint-foundation/terrapoint/lib/testutil"
)

func testGenerator(workDir string) *Generator {
	return &Generator{
		WorkDir:   workDir,
		Database:  "clouds",
		User:      "pc",
		Host:      "pg.local",
		Table:     "patches",
		resolveIP: func(string) (string, error) { return "192.0.2.7", nil },
	}
}

var testExtent = extent.Extent{MinX: -5, MinY: 0, MinZ: 0, MaxX: 10, MaxY: 20, MaxZ: 30}

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("renders both artifacts", func(t *testing.T) {
		t.Parallel()

		workDir := testutil.WorkDir(t)
		generator := testGenerator(workDir)

		servicePath, err := generator.Generate(testExtent)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if servicePath != Path(workDir, "clouds") {
			t.Errorf("service path = %q, want %q", servicePath, Path(workDir, "clouds"))
		}

		processConfig := testutil.ReadFile(t, ProcessPath(workDir, "clouds"))
		for _, want := range []string{"192.0.2.7", "clouds"} {
			if !strings.Contains(processConfig, want) {
				t.Errorf("process config missing %q:\n%s", want, processConfig)
			}
		}

		serviceConfig := testutil.ReadFile(t, servicePath)
		for _, want := range []string{"patches", "pg.local", "clouds", "pc", "-5", "30"} {
			if !strings.Contains(serviceConfig, want) {
				t.Errorf("service config missing %q:\n%s", want, serviceConfig)
			}
		}
	})

	t.Run("artifacts keyed by database name", func(t *testing.T) {
		t.Parallel()

		workDir := testutil.WorkDir(t)
		first := testGenerator(workDir)
		if _, err := first.Generate(testExtent); err != nil {
			t.Fatalf("Generate: %v", err)
		}

		second := testGenerator(workDir)
		second.Database = "other"
		if _, err := second.Generate(testExtent); err != nil {
			t.Fatalf("Generate: %v", err)
		}

		// Both databases' artifacts coexist.
		testutil.ReadFile(t, Path(workDir, "clouds"))
		testutil.ReadFile(t, Path(workDir, "other"))
	})

	t.Run("tabs normalized in service config", func(t *testing.T) {
		t.Parallel()

		workDir := testutil.WorkDir(t)
		generator := testGenerator(workDir)
		generator.ServiceTemplate = []byte("table:\t!TABLE!\nhost: !HOST!\ndb: !DB!\nuser: !USER!\nbb: [!XMIN!, !YMIN!, !ZMIN!, !XMAX!, !YMAX!, !ZMAX!]\n")

		servicePath, err := generator.Generate(testExtent)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		serviceConfig := testutil.ReadFile(t, servicePath)
		if strings.Contains(serviceConfig, "\t") {
			t.Errorf("tab survived normalization:\n%q", serviceConfig)
		}
	})

	t.Run("resolution failure produces no artifacts", func(t *testing.T) {
		t.Parallel()

		workDir := testutil.WorkDir(t)
		generator := testGenerator(workDir)
		generator.resolveIP = func(name string) (string, error) {
			return "", &InterfaceError{Interface: "eth7", Reason: "no such interface"}
		}

		_, err := generator.Generate(testExtent)
		var interfaceError *InterfaceError
		if !errors.As(err, &interfaceError) {
			t.Fatalf("error = %v, want *InterfaceError", err)
		}
	})
}

func TestResolveInterfaceIP(t *testing.T) {
	t.Parallel()

	// The interface name itself is environment-specific; only the
	// failure shape is portable to assert.
	_, err := resolveInterfaceIP("terrapoint-test-does-not-exist")
	var interfaceError *InterfaceError
	if !errors.As(err, &interfaceError) {
		t.Fatalf("error = %v, want *InterfaceError", err)
	}
	if interfaceError.Interface != "terrapoint-test-does-not-exist" {
		t.Errorf("error names interface %q", interfaceError.Interface)
	}
}
