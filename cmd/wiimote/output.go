package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/rigado/wiimote"
	"github.com/rigado/wiimote/balance"
	"github.com/rigado/wiimote/linux/hci"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// session hands the device to event handlers, which may run before
// NewDevice returns.
type session struct {
	mu  sync.Mutex
	dev *hci.HCI
	out *printer
}

func (s *session) setDevice(dev *hci.HCI) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dev = dev
}

func (s *session) device() *hci.HCI {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dev
}

type eventRecord struct {
	Type    string    `json:"type"`
	Handle  uint16    `json:"handle,omitempty"`
	Addr    string    `json:"addr,omitempty"`
	Name    string    `json:"name,omitempty"`
	Data    string    `json:"data,omitempty"`
	Weights []float32 `json:"weights,omitempty"`
	Total   float32   `json:"total,omitempty"`
	Error   string    `json:"error,omitempty"`
}

type printer struct {
	mu   sync.Mutex
	w    io.Writer
	json bool
}

func newPrinter(w io.Writer, asJSON bool) *printer {
	return &printer{w: w, json: asJSON}
}

func record(e wiimote.Event) eventRecord {
	r := eventRecord{Type: e.Type.String(), Handle: e.Handle}
	if e.Addr != (wiimote.Addr{}) {
		r.Addr = e.Addr.String()
	}
	if e.Type == wiimote.EventNew {
		r.Name = string(e.Data)
	} else if len(e.Data) > 0 {
		r.Data = hex.EncodeToString(e.Data)
	}
	return r
}

func (p *printer) printEvent(e wiimote.Event) {
	r := record(e)
	if p.json {
		p.encode(r)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case r.Name != "":
		fmt.Fprintf(p.w, "%-13s %04X %s %q\n", r.Type, r.Handle, r.Addr, r.Name)
	case r.Data != "":
		fmt.Fprintf(p.w, "%-13s %04X %s [% X]\n", r.Type, r.Handle, r.Addr, e.Data)
	default:
		fmt.Fprintf(p.w, "%-13s %04X %s\n", r.Type, r.Handle, r.Addr)
	}
}

func (p *printer) printWeights(e wiimote.Event, w [balance.NumPositions]float32) {
	total := balance.Total(w)
	if p.json {
		r := record(e)
		r.Data = ""
		r.Weights = w[:]
		r.Total = total
		p.encode(r)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%04X %s", e.Handle, e.Addr)
	for i, v := range w {
		fmt.Fprintf(p.w, " %s=%.2f", balance.Position(i), v)
	}
	fmt.Fprintf(p.w, " total=%.2fkg\n", total)
}

func (p *printer) printError(err error) {
	if p.json {
		p.encode(eventRecord{Type: "error", Error: err.Error()})
		return
	}
	wiimote.GetLogger().Error(err)
}

func (p *printer) encode(r eventRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := json.NewEncoder(p.w).Encode(r); err != nil {
		wiimote.GetLogger().Errorf("can't encode %s event: %v", r.Type, err)
	}
}
