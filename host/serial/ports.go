//go:build !wasm

package serial

import (
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
)

// RaspberryPiVID is the USB vendor ID of RP2040/RP2350 boards
const RaspberryPiVID = "2E8A"

// PortInfo describes one serial port on the host
type PortInfo struct {
	Name    string
	USB     bool
	VID     string
	PID     string
	Serial  string
	Product string
}

// Board reports whether the port looks like an RP2040/RP2350 board
func (p PortInfo) Board() bool {
	return p.USB && strings.EqualFold(p.VID, RaspberryPiVID)
}

// ListPorts returns every serial port the host knows about
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		ports = append(ports, PortInfo{
			Name:    d.Name,
			USB:     d.IsUSB,
			VID:     d.VID,
			PID:     d.PID,
			Serial:  d.SerialNumber,
			Product: d.Product,
		})
	}
	return ports, nil
}

// FindBoard returns the first port that looks like an RP2040/RP2350 board
func FindBoard() (string, error) {
	ports, err := ListPorts()
	if err != nil {
		return "", err
	}
	for _, p := range ports {
		if p.Board() {
			return p.Name, nil
		}
	}
	return "", fmt.Errorf("no RP2040/RP2350 board found on %d ports", len(ports))
}
