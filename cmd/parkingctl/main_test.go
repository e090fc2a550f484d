package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
)

func TestRenderASCII(t *testing.T) {
	l := &domain.Layout{
		TemplateID:   "custom",
		TemplateName: "Custom Layout",
		Grid:         domain.Grid{{2, 1, 1, 1}, {4, 0, 0, 3}, {1, 0, 0, 0}},
		Slots: domain.SlotMap{
			{Row: 0, Col: 1}: {Status: domain.SlotAvailable, VehicleType: domain.VehicleCar},
			{Row: 0, Col: 2}: {Status: domain.SlotBooked, VehicleType: domain.VehicleBike},
			{Row: 0, Col: 3}: {Status: domain.SlotUnavailable, VehicleType: domain.VehicleCar},
		},
	}
	l.Recount()

	out := renderASCII(l)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Custom Layout (custom) 4x3, 3 slots: 2 car, 1 bike", lines[0])
	assert.Equal(t, "ECbx", lines[1])
	assert.Equal(t, "#..X", lines[2])
	assert.Equal(t, "?...", lines[3])
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "parkingctl.yaml")
	require.NoError(t, os.WriteFile(file, []byte("database:\n  host: db.internal\n  port: 6543\nlog:\n  level: debug\n"), 0o600))
	t.Setenv("PARKINGCTL_DATABASE_NAME", "lots")

	cfg, err := loadConfig(viper.New(), file)
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "lots", cfg.Database.Name)
	assert.Equal(t, "parking", cfg.Database.User)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 20.0, cfg.DefaultPricePerHour)

	sc := cfg.serverConfig()
	assert.Equal(t, "db.internal", sc.DBHost)
	assert.Equal(t, "disable", sc.DBSslMode)
}

func TestTemplatesCommand(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"templates", "--cars", "4", "--bikes", "2", "--template", "efficient-grid", "--format", "ascii"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "(efficient-grid)")
	assert.Contains(t, out.String(), "6 slots: 4 car, 2 bike")
}

func TestTemplatesCommandRejectsEmptyRequest(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"templates", "--format", "json"})
	assert.Error(t, root.Execute())
}

func TestCheckLayoutFromFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "layout.json")
	doc := `{"templateName":"Custom Layout","slots":{"0-0":{"id":"0-0","vehicleType":"car","status":"available"},"0-1":{"id":"0-1","vehicleType":"bike","status":"available"}}}`
	require.NoError(t, os.WriteFile(file, []byte(doc), 0o600))

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"check-layout", "--file", file, "--cars", "1", "--bikes", "1"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), `"isValid": true`)

	root = newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"check-layout", "--file", file, "--cars", "3"})
	assert.Error(t, root.Execute())

	root = newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"check-layout"})
	assert.Error(t, root.Execute())
}
