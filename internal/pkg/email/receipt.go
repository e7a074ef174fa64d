// internal/pkg/email/receipt.go
package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

const resendEndpoint = "https://api.resend.com/emails"

// ResendEmailRequest is the Resend API payload
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// ResendResponse is the Resend API response
type ResendResponse struct {
	ID string `json:"id"`
}

// ReceiptService renders and delivers purchase receipts through the
// Resend API.
type ReceiptService struct {
	config   *config.Config
	client   *http.Client
	template *template.Template
	endpoint string
}

// NewReceiptService creates a new receipt email service
func NewReceiptService(cfg *config.Config) *ReceiptService {
	return &ReceiptService{
		config:   cfg,
		client:   &http.Client{Timeout: 10 * time.Second},
		template: template.Must(template.New("receipt").Parse(receiptTemplate)),
		endpoint: resendEndpoint,
	}
}

// SendReceipt renders the receipt for a settled order and delivers it to
// the buyer.
func (s *ReceiptService) SendReceipt(settled *order.SettledOrder) error {
	apiKey := s.config.Email.APIKey
	if apiKey == "" {
		return fmt.Errorf("email API key not configured")
	}

	html, err := s.renderReceipt(settled)
	if err != nil {
		return err
	}

	from := s.config.Email.FromEmail
	if s.config.Email.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.Email.FromName, s.config.Email.FromEmail)
	}

	reqData := ResendEmailRequest{
		From:    from,
		To:      []string{settled.User.Email},
		Subject: fmt.Sprintf("Order Confirmation %s", settled.Order.OrderNumber),
		HTML:    html,
	}

	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email API returned status %d", resp.StatusCode)
	}

	return nil
}

type receiptData struct {
	Name          string
	OrderNumber   string
	OrderDate     string
	Items         []receiptItem
	ItemsPrice    string
	ShippingPrice string
	TaxPrice      string
	TotalPrice    string
}

type receiptItem struct {
	Name     string
	Quantity int
	Price    string
}

func (s *ReceiptService) renderReceipt(settled *order.SettledOrder) (string, error) {
	o := settled.Order

	data := receiptData{
		Name:          settled.User.Name,
		OrderNumber:   o.OrderNumber,
		OrderDate:     o.CreatedAt.Format("January 2, 2006"),
		ItemsPrice:    o.ItemsPrice.StringFixed(2),
		ShippingPrice: o.ShippingPrice.StringFixed(2),
		TaxPrice:      o.TaxPrice.StringFixed(2),
		TotalPrice:    o.TotalPrice.StringFixed(2),
	}
	for _, item := range o.Items {
		data.Items = append(data.Items, receiptItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price.StringFixed(2),
		})
	}

	var buf bytes.Buffer
	if err := s.template.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render receipt: %w", err)
	}
	return buf.String(), nil
}

const receiptTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Thanks for your purchase, {{.Name}}!</h2>
  <p>Order <strong>{{.OrderNumber}}</strong> placed on {{.OrderDate}}.</p>
  <table style="width: 100%; border-collapse: collapse;">
    <tr>
      <th style="text-align: left; border-bottom: 1px solid #ddd; padding: 8px;">Item</th>
      <th style="text-align: right; border-bottom: 1px solid #ddd; padding: 8px;">Qty</th>
      <th style="text-align: right; border-bottom: 1px solid #ddd; padding: 8px;">Price</th>
    </tr>
    {{range .Items}}
    <tr>
      <td style="padding: 8px;">{{.Name}}</td>
      <td style="text-align: right; padding: 8px;">{{.Quantity}}</td>
      <td style="text-align: right; padding: 8px;">${{.Price}}</td>
    </tr>
    {{end}}
  </table>
  <p>Items: ${{.ItemsPrice}}<br>
  Shipping: ${{.ShippingPrice}}<br>
  Tax: ${{.TaxPrice}}<br>
  <strong>Total: ${{.TotalPrice}}</strong></p>
</body>
</html>`
