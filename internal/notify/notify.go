package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ilmekten/shop-backend/internal/orders"
	"github.com/ilmekten/shop-backend/pkg/config"
	"github.com/ilmekten/shop-backend/pkg/enums"
	pkgerrors "github.com/ilmekten/shop-backend/pkg/errors"
	"github.com/ilmekten/shop-backend/pkg/logger"
	"github.com/ilmekten/shop-backend/pkg/metrics"
)

var paymentLabels = map[enums.PaymentMethod]string{
	enums.PaymentMethodCard:     "Kredi/Banka Kartı",
	enums.PaymentMethodTransfer: "Havale/EFT",
	enums.PaymentMethodCash:     "Kapıda Ödeme",
}

// Notifier posts new-order emails through the EmailJS REST API. Sends never
// block or fail a checkout; the order is already committed by the time the
// notifier runs.
type Notifier struct {
	cfg     config.NotifyConfig
	client  *http.Client
	logger  *logger.Logger
	metrics *metrics.ShopMetrics
}

func NewNotifier(cfg config.NotifyConfig, logg *logger.Logger, m *metrics.ShopMetrics) *Notifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		cfg:     cfg,
		client:  &http.Client{Timeout: timeout},
		logger:  logg,
		metrics: m,
	}
}

type sendRequest struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	TemplateParams map[string]any `json:"template_params"`
}

// NotifyAsync fires the notification from its own goroutine with a fresh
// context; checkout returns immediately.
func (n *Notifier) NotifyAsync(ctx context.Context, order orders.Order) {
	if !n.cfg.Ready() {
		n.logger.Info(ctx, "order notification skipped, notifier not configured")
		return
	}

	fields := map[string]any{"order_id": order.ID}
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), n.client.Timeout)
		defer cancel()
		sendCtx = n.logger.WithFields(sendCtx, fields)

		if err := n.send(sendCtx, order); err != nil {
			n.metrics.IncNotifyFailure()
			n.logger.Error(sendCtx, "sending order notification", err)
			return
		}
		n.logger.Info(sendCtx, "order notification sent")
	}()
}

func (n *Notifier) send(ctx context.Context, order orders.Order) error {
	payload := sendRequest{
		ServiceID:      n.cfg.ServiceID,
		TemplateID:     n.cfg.TemplateID,
		UserID:         n.cfg.PublicKey,
		TemplateParams: templateParams(n.cfg.Recipient, order),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding notification payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building notification request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "posting notification")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return pkgerrors.Newf(pkgerrors.CodeDependency, "notification endpoint returned %d: %s", resp.StatusCode, string(snippet))
	}
	return nil
}

// templateParams flattens the order into the fields the email template
// expects: an itemized text block with gifts appended, the coupon line, and
// the customer's delivery details.
func templateParams(recipient string, order orders.Order) map[string]any {
	var items strings.Builder
	for i, item := range order.Items {
		if i > 0 {
			items.WriteString("\n")
		}
		fmt.Fprintf(&items, "%s x%d - %d₺", item.Name, item.Quantity, item.Price*item.Quantity)
	}
	if len(order.Gifts) > 0 {
		items.WriteString("\n\nHediye Ürünler:")
		for _, gift := range order.Gifts {
			fmt.Fprintf(&items, "\n🎁 %s", gift.Name)
		}
	}

	couponInfo := ""
	if order.Coupon != nil {
		couponInfo = fmt.Sprintf("Kupon: %s (-%d₺)", order.Coupon.Code, order.Coupon.Amount)
	}

	payment := paymentLabels[order.PaymentMethod]
	if payment == "" {
		payment = string(order.PaymentMethod)
	}

	notes := order.Customer.Notes
	if notes == "" {
		notes = "Yok"
	}

	return map[string]any{
		"to_email":         recipient,
		"order_id":         order.ID,
		"customer_name":    order.Customer.Name,
		"customer_phone":   order.Customer.Phone,
		"customer_address": order.Customer.Address,
		"customer_city":    order.Customer.City,
		"items":            items.String(),
		"subtotal":         order.Subtotal,
		"discount":         order.Discount,
		"total":            order.Total,
		"payment_method":   payment,
		"order_notes":      notes,
		"coupon_info":      couponInfo,
		"order_date":       order.Date.Format("02.01.2006 15:04"),
	}
}
