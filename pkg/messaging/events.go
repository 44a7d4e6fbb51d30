package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventAlertGenerated   = "inventory.alert.generated"
	EventMovementAppended = "inventory.movement.appended"
	EventContractApproved = "supplier.contract.approved"
)

// Exchange names
const (
	ExchangeInventoryEvents = "inventory.events"
)

// Event is the base event structure published to the broker
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent creates an event with the given payload
func NewEvent(eventType, source string, data interface{}) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}

	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Data:      raw,
	}, nil
}

// AlertGeneratedEvent is the payload for low-stock alerts
type AlertGeneratedEvent struct {
	ItemID       int64  `json:"item_id"`
	ItemName     string `json:"item_name"`
	CurrentStock int64  `json:"current_stock"`
	Threshold    int64  `json:"threshold"`
	Destination  string `json:"destination"`
	Message      string `json:"message"`
}

// ContractApprovedEvent is the payload for supplier contract approvals
type ContractApprovedEvent struct {
	ContractID   int64  `json:"contract_id"`
	SupplierID   int64  `json:"supplier_id"`
	SupplierName string `json:"supplier_name"`
	BiddingPrice string `json:"bidding_price"`
}
