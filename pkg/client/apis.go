package client

import (
	"encoding/json"

	pkgerrors "github.com/pkg/errors"

	"github.com/GEROGIANNIS/GrubPower/pkg/monitor"
)

// GetStatus returns the daemon's monitor status snapshot.
func (c *Client) GetStatus() (*monitor.Status, error) {
	ret, err := c.Get("/status")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get status")
	}

	var st monitor.Status
	if err := json.Unmarshal([]byte(ret), &st); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal status")
	}
	return &st, nil
}

// GetUSBDevices returns the daemon's current USB device listing.
func (c *Client) GetUSBDevices() ([]monitor.USBDevice, error) {
	ret, err := c.Get("/usb-devices")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get usb devices")
	}

	var devices []monitor.USBDevice
	if err := json.Unmarshal([]byte(ret), &devices); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal usb devices")
	}
	return devices, nil
}

// GetConfig returns the daemon's configuration values by key.
func (c *Client) GetConfig() (map[string]string, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}

	var values map[string]string
	if err := json.Unmarshal([]byte(ret), &values); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}
	return values, nil
}

// GetVersion returns the daemon's version string.
func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}

	var v string
	if err := json.Unmarshal([]byte(ret), &v); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to unmarshal version")
	}
	return v, nil
}
