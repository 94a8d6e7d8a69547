package clover

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"inventory-service/internal/models"
	"inventory-service/internal/util"
)

// ErrOrderNotFound marks a 404 from the platform: the order (or its line
// items) does not exist. Soft for callers; anything else is a hard failure.
var ErrOrderNotFound = errors.New("order not found")

// Client is a read-only HTTP client for the Clover orders API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a platform client with an explicit request timeout
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: util.GetLogger(),
	}
}

// GetOrder fetches a single order
func (c *Client) GetOrder(ctx context.Context, apiToken, merchantID, orderID string) (*models.CloverOrder, error) {
	url := fmt.Sprintf("%s/merchants/%s/orders/%s", c.baseURL, merchantID, orderID)

	var order models.CloverOrder
	if err := c.getJSON(ctx, apiToken, url, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderLineItems fetches the authoritative list of sold items for an order
func (c *Client) GetOrderLineItems(ctx context.Context, apiToken, merchantID, orderID string) ([]models.CloverLineItem, error) {
	ctx, span := util.StartSpan(ctx, "CloverClient.GetOrderLineItems")
	defer span.End()

	start := time.Now()
	defer func() {
		util.OrderLookupLatency.Observe(time.Since(start).Seconds())
	}()

	url := fmt.Sprintf("%s/merchants/%s/orders/%s/line_items", c.baseURL, merchantID, orderID)

	var list models.CloverLineItemList
	if err := c.getJSON(ctx, apiToken, url, &list); err != nil {
		return nil, err
	}
	return list.Elements, nil
}

func (c *Client) getJSON(ctx context.Context, apiToken, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("clover request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrOrderNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("clover returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode clover response: %w", err)
	}
	return nil
}

// SoldItem is a deduction-relevant aggregate of an order's line items
type SoldItem struct {
	ItemID   string
	Name     string
	Quantity decimal.Decimal
}

var thousand = decimal.NewFromInt(1000)

// AggregateSoldItems collapses raw line items into per-catalog-item sale
// quantities. Refunded, exchanged, and non-revenue rows never reduce stock.
// Clover emits one row per sold unit for item-priced items and a unitQty in
// thousandths for unit-priced items.
func AggregateSoldItems(lineItems []models.CloverLineItem) []SoldItem {
	type agg struct {
		name string
		qty  decimal.Decimal
	}
	totals := make(map[string]*agg)
	order := make([]string, 0, len(lineItems))

	for _, li := range lineItems {
		if li.Refunded || li.Exchanged || !li.IsRevenue {
			continue
		}

		itemID := li.ID
		if li.Item != nil && li.Item.ID != "" {
			itemID = li.Item.ID
		}

		qty := decimal.NewFromInt(1)
		if li.UnitQty > 0 {
			qty = decimal.NewFromInt(li.UnitQty).Div(thousand)
		}

		if a, ok := totals[itemID]; ok {
			a.qty = a.qty.Add(qty)
		} else {
			totals[itemID] = &agg{name: li.Name, qty: qty}
			order = append(order, itemID)
		}
	}

	items := make([]SoldItem, 0, len(order))
	for _, id := range order {
		items = append(items, SoldItem{ItemID: id, Name: totals[id].name, Quantity: totals[id].qty})
	}
	return items
}
