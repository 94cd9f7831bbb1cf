package http

import (
	"time"

	"github.com/Flarenzy/node-inventory/internal/domain"
	"github.com/Flarenzy/node-inventory/internal/ipv4"
)

// SearchResponse lists the matching node identifiers in ascending order.
type SearchResponse struct {
	VIDs []string `json:"vids" example:"0x1a0e0001,0x1a0e0002"`
}

// NodeResponse is the current state of a node.
type NodeResponse struct {
	VID           string             `json:"vid" example:"0x1a0e0001"`
	Name          *string            `json:"name,omitempty" example:"Wilbur Kelly Mallory"`
	Category      *string            `json:"category,omitempty" example:"client"`
	AbonentNumber *string            `json:"abonent_number,omitempty" example:"0001"`
	ServerNumber  *string            `json:"server_number,omitempty" example:"0001"`
	Enabled       bool               `json:"enabled"`
	NetworkID     *int64             `json:"network_id,omitempty" example:"1"`
	CreationDate  *time.Time         `json:"creation_date,omitempty" example:"2016-09-01T00:00:00Z"`
	DeletionDate  *time.Time         `json:"deletion_date,omitempty"`
	Hardware      []HardwareResponse `json:"hardware,omitempty"`
	Tickets       []TicketResponse   `json:"tickets,omitempty"`
}

type HardwareResponse struct {
	ID             int64        `json:"id" example:"3"`
	Version        *string      `json:"version,omitempty" example:"3.0-670"`
	VersionDecoded *string      `json:"version_decoded,omitempty" example:"3.0"`
	IPs            []IPResponse `json:"ips,omitempty"`
}

type IPResponse struct {
	Address string `json:"address" example:"192.168.0.1"`
	U32     uint32 `json:"u32" example:"3232235521"`
	Type    string `json:"type" example:"accessip"`
}

type TicketResponse struct {
	TicketSystemID int64  `json:"ticket_system_id" example:"1"`
	TicketID       string `json:"ticket_id" example:"111"`
}

// HistoryEntryResponse is one change of a field, newest first.
type HistoryEntryResponse struct {
	Timestamp time.Time `json:"timestamp" example:"2016-09-02T00:00:00Z"`
	Value     string    `json:"value" example:"Larry"`
}

// CreateNodeRequest is the payload accepted when registering a node.
type CreateNodeRequest struct {
	VID           string     `json:"vid" example:"0x1a0e0001"`
	NetworkID     int64      `json:"network_id" example:"1"`
	Name          *string    `json:"name,omitempty" example:"Barry"`
	Category      *string    `json:"category,omitempty" example:"client"`
	AbonentNumber *string    `json:"abonent_number,omitempty"`
	ServerNumber  *string    `json:"server_number,omitempty" example:"0001"`
	Enabled       bool       `json:"enabled"`
	CreationDate  *time.Time `json:"creation_date,omitempty"`
}

// UpdateNodeRequest changes tracked fields; omitted fields stay as they are.
type UpdateNodeRequest struct {
	Name          *string `json:"name,omitempty" example:"Larry"`
	Category      *string `json:"category,omitempty"`
	AbonentNumber *string `json:"abonent_number,omitempty"`
	ServerNumber  *string `json:"server_number,omitempty"`
}

// ErrorResponse is a simple envelope for error messages.
type ErrorResponse struct {
	Error string `json:"error" example:"node not found"`
}

func (r CreateNodeRequest) toInput() domain.CreateNodeInput {
	in := domain.CreateNodeInput{
		VID:           r.VID,
		NetworkID:     r.NetworkID,
		Name:          r.Name,
		Category:      r.Category,
		AbonentNumber: r.AbonentNumber,
		ServerNumber:  r.ServerNumber,
		Enabled:       r.Enabled,
	}
	if r.CreationDate != nil {
		in.CreationDate = *r.CreationDate
	}
	return in
}

func (r UpdateNodeRequest) toInput() domain.UpdateNodeInput {
	return domain.UpdateNodeInput{
		Name:          r.Name,
		Category:      r.Category,
		AbonentNumber: r.AbonentNumber,
		ServerNumber:  r.ServerNumber,
	}
}

func nodeToResponse(n domain.Node) NodeResponse {
	return NodeResponse{
		VID:           n.VID,
		Name:          n.Name,
		Category:      n.Category,
		AbonentNumber: n.AbonentNumber,
		ServerNumber:  n.ServerNumber,
		Enabled:       n.Enabled,
		NetworkID:     n.NetworkID,
		CreationDate:  n.CreationDate,
		DeletionDate:  n.DeletionDate,
	}
}

func detailsToResponse(d domain.NodeDetails) NodeResponse {
	out := nodeToResponse(d.Node)
	for _, hw := range d.Hardware {
		h := HardwareResponse{
			ID:             hw.Hardware.ID,
			Version:        hw.Hardware.Version,
			VersionDecoded: hw.Hardware.VersionDecoded,
		}
		for _, ip := range hw.IPs {
			addr, _ := ipv4.ToAddress(int64(ip.U32))
			h.IPs = append(h.IPs, IPResponse{Address: addr, U32: ip.U32, Type: ip.Type})
		}
		out.Hardware = append(out.Hardware, h)
	}
	for _, t := range d.Tickets {
		out.Tickets = append(out.Tickets, TicketResponse{TicketSystemID: t.TicketSystemID, TicketID: t.TicketID})
	}
	return out
}

func historyToResponse(entries []domain.HistoryEntry) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryEntryResponse{Timestamp: e.Timestamp.UTC(), Value: e.Value})
	}
	return out
}
