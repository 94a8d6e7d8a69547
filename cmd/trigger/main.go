// Command trigger synthesizes a single webhook event for a merchant, signs
// it with the tenant's shared secret, and POSTs it to a running server. It
// goes through the production ingress, decoder, resolver, and ledger; there
// is no mock path.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"inventory-service/internal/clover"
	"inventory-service/internal/models"
)

func main() {
	var (
		serverURL  = flag.String("server", "http://localhost:8080", "base URL of the running inventory service")
		merchantID = flag.String("merchant", "", "Clover merchant id of the tenant")
		secret     = flag.String("secret", "", "tenant webhook shared secret")
		authCode   = flag.String("auth-code", "", "optional X-Clover-Auth value")
		objectID   = flag.String("object", "", "object id, e.g. O:ABC123 for an order")
		eventType  = flag.String("type", models.WebhookOpCreate, "event type: CREATE, UPDATE or DELETE")
		appID      = flag.String("app", "test-trigger", "appId to embed in the payload")
	)
	flag.Parse()

	if *merchantID == "" || *secret == "" || *objectID == "" {
		flag.Usage()
		log.Fatal("merchant, secret and object are required")
	}

	now := time.Now().UnixMilli()
	payload := models.CloverWebhookPayload{
		AppID: *appID,
		Merchants: map[string][]models.CloverMerchantEvent{
			*merchantID: {{ObjectID: *objectID, Type: *eventType, TS: now}},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Fatalf("Failed to marshal payload: %v", err)
	}

	ts := strconv.FormatInt(now, 10)
	signature := clover.SignPayload(ts, body, *secret)

	req, err := http.NewRequest(http.MethodPost, *serverURL+"/webhook", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Clover-Signature", signature)
	if *authCode != "" {
		req.Header.Set("X-Clover-Auth", *authCode)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("status=%d body=%s\n", resp.StatusCode, string(respBody))
}
