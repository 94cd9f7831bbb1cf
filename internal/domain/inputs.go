package domain

import (
	"strconv"
	"time"

	"github.com/Flarenzy/node-inventory/internal/ipv4"
	"github.com/Flarenzy/node-inventory/internal/vid"
)

type CreateNetworkInput struct {
	NetworkVID string
	Name       string
}

type CreateCoordinatorInput struct {
	VID       string
	NetworkID int64
}

type CreateNodeInput struct {
	VID           string
	NetworkID     int64
	Name          *string
	Category      *string
	AbonentNumber *string
	ServerNumber  *string
	Enabled       bool
	CreationDate  time.Time
}

func (in CreateNodeInput) Validate() error {
	if !vid.Valid(in.VID) {
		return &ValidationError{Field: "vid", Value: in.VID, Reason: "must be 0x followed by 8 lowercase hex digits"}
	}
	if in.NetworkID == 0 {
		return &ValidationError{Field: "network_id", Value: "0", Reason: "node must belong to a network"}
	}
	return nil
}

// UpdateNodeInput carries the tracked fields to change. Nil means unchanged.
type UpdateNodeInput struct {
	Name          *string
	Category      *string
	AbonentNumber *string
	ServerNumber  *string
}

func (in UpdateNodeInput) Empty() bool {
	return in.Name == nil && in.Category == nil && in.AbonentNumber == nil && in.ServerNumber == nil
}

type AttachHardwareInput struct {
	NodeID         int64
	CoordinatorID  int64
	Version        *string
	VersionDecoded *string
	CreationDate   time.Time
}

func (in AttachHardwareInput) Validate() error {
	if in.NodeID == 0 {
		return &ValidationError{Field: "node_id", Value: "0", Reason: "hardware must belong to a node"}
	}
	if in.CoordinatorID == 0 {
		return &ValidationError{Field: "coordinator_id", Value: "0", Reason: "hardware must report through a coordinator"}
	}
	return nil
}

type UpdateHardwareInput struct {
	Version        *string
	VersionDecoded *string
}

type BindIPInput struct {
	HardwareNodeID int64
	U32            int64
	Type           string
}

func (in BindIPInput) Validate() error {
	if in.U32 < 0 || in.U32 > ipv4.MaxU32 {
		return &ValidationError{Field: "u32", Value: strconv.FormatInt(in.U32, 10), Reason: "must be in [0, 4294967295]"}
	}
	return nil
}

type LinkTicketInput struct {
	TicketSystemID int64
	VID            string
	TicketID       string
}
