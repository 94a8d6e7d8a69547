package models

import "encoding/json"

// Webhook operation types sent by Clover
const (
	WebhookOpCreate = "CREATE"
	WebhookOpUpdate = "UPDATE"
	WebhookOpDelete = "DELETE"
)

// CloverWebhookPayload is the multi-merchant wire format:
// { "appId": "...", "merchants": { "<merchantId>": [ {event}, ... ] } }
type CloverWebhookPayload struct {
	AppID     string                           `json:"appId"`
	Merchants map[string][]CloverMerchantEvent `json:"merchants"`
}

// CloverMerchantEvent is one event inside a delivery
type CloverMerchantEvent struct {
	ObjectID string `json:"objectId"`
	Type     string `json:"type"`
	TS       int64  `json:"ts"`
}

// LegacyWebhookPayload is the older per-merchant form posted to
// /webhook/{merchantId}; ingress normalizes it to CloverWebhookPayload.
type LegacyWebhookPayload struct {
	AppID      string          `json:"appId"`
	MerchantID string          `json:"merchantId"`
	Type       string          `json:"type"`
	ObjectID   string          `json:"objectId"`
	TS         int64           `json:"ts"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// Normalize lifts a legacy payload into the multi-merchant shape
func (p *LegacyWebhookPayload) Normalize() *CloverWebhookPayload {
	return &CloverWebhookPayload{
		AppID: p.AppID,
		Merchants: map[string][]CloverMerchantEvent{
			p.MerchantID: {{ObjectID: p.ObjectID, Type: p.Type, TS: p.TS}},
		},
	}
}

// EventAcceptedMessage is the internal queue message published after a
// webhook event row has been persisted; the worker picks it up from here.
type EventAcceptedMessage struct {
	EventID    string `json:"event_id"`
	TenantID   int64  `json:"tenant_id"`
	MerchantID string `json:"merchant_id"`
	ObjectID   string `json:"object_id"`
	EventType  string `json:"event_type"`
	TS         int64  `json:"ts"`
}

// CloverOrder is the subset of the platform order object the pipeline reads
type CloverOrder struct {
	ID    string `json:"id"`
	State string `json:"state"`
	Total int64  `json:"total"`
}

// CloverLineItem is one sold item on a platform order. Clover emits one row
// per sold unit for item-priced items and unitQty (thousandths) for
// unit-priced items.
type CloverLineItem struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Item      *CloverItemRef `json:"item,omitempty"`
	UnitQty   int64          `json:"unitQty,omitempty"`
	Price     int64          `json:"price"`
	Refunded  bool           `json:"refunded"`
	Exchanged bool           `json:"exchanged"`
	IsRevenue bool           `json:"isRevenue"`
}

// CloverItemRef points at the catalog item a line item was sold from
type CloverItemRef struct {
	ID string `json:"id"`
}

// CloverLineItemList is the wire envelope of the line_items endpoint
type CloverLineItemList struct {
	Elements []CloverLineItem `json:"elements"`
}
