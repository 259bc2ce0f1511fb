package daemon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/GEROGIANNIS/GrubPower/pkg/config"
	"github.com/GEROGIANNIS/GrubPower/pkg/monitor"
	"github.com/GEROGIANNIS/GrubPower/pkg/sysfs"
)

func setupTestDaemon(t *testing.T) {
	t.Helper()

	fs := sysfs.New(t.TempDir())
	usb := monitor.NewUSBEnabler(fs, config.PortSelection{Mode: config.SelectAll}, false)
	lid := monitor.NewLidReader(fs, true)
	mon = monitor.New(fs, usb, lid, monitor.ProbeDisplay(fs), monitor.Options{})
	mon.Tick(time.Now())

	cfg, err := config.NewFile(filepath.Join(t.TempDir(), "grubpower.conf"))
	if err != nil {
		t.Fatal(err)
	}
	conf = cfg
}

func doRequest(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	setupRoutes().ServeHTTP(w, req)
	return w
}

func TestGetStatus(t *testing.T) {
	setupTestDaemon(t)

	w := doRequest(t, "/status")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /status = %d", w.Code)
	}

	var st monitor.Status
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if st.Lid != "open" {
		t.Errorf("status lid = %q, want open", st.Lid)
	}
	if st.Battery != monitor.UnknownBattery {
		t.Errorf("status battery = %d, want unknown on an empty tree", st.Battery)
	}
}

func TestGetBatteryAndLid(t *testing.T) {
	setupTestDaemon(t)

	w := doRequest(t, "/battery")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /battery = %d", w.Code)
	}

	w = doRequest(t, "/lid")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /lid = %d", w.Code)
	}

	var lid string
	if err := json.Unmarshal(w.Body.Bytes(), &lid); err != nil {
		t.Fatalf("decode lid: %v", err)
	}
	if lid != "open" {
		t.Errorf("lid = %q, want open", lid)
	}
}

func TestGetUSBDevices(t *testing.T) {
	setupTestDaemon(t)

	w := doRequest(t, "/usb-devices")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /usb-devices = %d", w.Code)
	}

	var devices []monitor.USBDevice
	if err := json.Unmarshal(w.Body.Bytes(), &devices); err != nil {
		t.Fatalf("decode devices: %v", err)
	}
	if len(devices) != 0 {
		t.Errorf("devices = %v, want none on an empty tree", devices)
	}
}

func TestGetConfig(t *testing.T) {
	setupTestDaemon(t)

	w := doRequest(t, "/config")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /config = %d", w.Code)
	}

	var values map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &values); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if values[config.KeySelectPorts] != "all" {
		t.Errorf("config %s = %q, want default all", config.KeySelectPorts, values[config.KeySelectPorts])
	}
	if len(values) != len(config.Keys()) {
		t.Errorf("config has %d keys, want %d", len(values), len(config.Keys()))
	}
}

func TestGetVersion(t *testing.T) {
	setupTestDaemon(t)

	w := doRequest(t, "/version")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /version = %d", w.Code)
	}
}
