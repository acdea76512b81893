package checkout

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nebula-retail/storefront/internal/cart"
	"github.com/nebula-retail/storefront/internal/common"
	"github.com/nebula-retail/storefront/internal/events"
	"github.com/nebula-retail/storefront/internal/obs"
	"github.com/nebula-retail/storefront/internal/pricing"
	"github.com/nebula-retail/storefront/internal/upstream"
)

// ShippingDetails is the checkout form. All fields are required.
type ShippingDetails struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	Zip     string `json:"zip" validate:"required"`
}

// Input is the checkout submission payload.
type Input struct {
	ShippingDetails ShippingDetails `json:"shippingDetails"`
}

// Output is the confirmation returned after a successful submission.
type Output struct {
	OrderID string          `json:"orderId"`
	Status  string          `json:"status"`
	Pricing pricing.Summary `json:"pricing"`
}

// orderPayload is the wire shape the Orders service expects. Monetary
// values go out as JSON numbers, so the decimal amounts used internally are
// converted at this boundary.
type orderPayload struct {
	Cart            []orderItem     `json:"cart"`
	ShippingDetails ShippingDetails `json:"shippingDetails"`
	Total           float64         `json:"total"`
}

type orderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	ImageURL  string  `json:"imageUrl"`
	Quantity  int     `json:"quantity"`
}

func orderItems(lines []cart.Line) []orderItem {
	items := make([]orderItem, len(lines))
	for i, line := range lines {
		items[i] = orderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice.InexactFloat64(),
			ImageURL:  line.ImageURL,
			Quantity:  line.Quantity,
		}
	}
	return items
}

type orderResponse struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// Service submits orders to the external Orders service. This is the cart's
// terminal transition: the cart is cleared only after the service confirms
// the order, and is left untouched on any failure so the user can re-submit.
type Service struct {
	Orders   *upstream.Client
	Events   *events.Bus
	Validate *validator.Validate
}

// NewService constructs a checkout service with a ready validator.
func NewService(orders *upstream.Client, bus *events.Bus) *Service {
	return &Service{
		Orders:   orders,
		Events:   bus,
		Validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Submit validates the form, prices the cart with tax and the flat shipping
// fee, and posts the order. No automatic retry: a failure surfaces to the
// user, who re-submits manually.
func (s *Service) Submit(ctx context.Context, store *cart.Store, in Input) (Output, error) {
	if s == nil || s.Orders == nil {
		return Output{}, errors.New("checkout service not configured")
	}
	if err := s.validate(in); err != nil {
		return Output{}, err
	}
	snap := store.Snapshot()
	if snap.Empty() {
		return Output{}, common.NewAppError("CART_EMPTY", "cart is empty", http.StatusBadRequest, nil)
	}

	summary := pricing.Quote(snap.Subtotal, true)
	var confirmed orderResponse
	err := s.Orders.PostJSON(ctx, "/api/orders", orderPayload{
		Cart:            orderItems(snap.Lines),
		ShippingDetails: in.ShippingDetails,
		Total:           summary.GrandTotal.InexactFloat64(),
	}, &confirmed)
	if err != nil {
		s.recordFailure()
		return Output{}, upstream.MapError(err, "orders")
	}
	if strings.TrimSpace(confirmed.OrderID) == "" {
		s.recordFailure()
		return Output{}, common.NewAppError(common.CodeUpstream, "orders service returned no order id", http.StatusBadGateway, nil)
	}

	store.Clear()
	if s.Events != nil {
		_ = s.Events.Emit(ctx, events.TopicOrderPlaced, map[string]any{
			"orderId": confirmed.OrderID,
			"total":   summary.GrandTotal.String(),
			"items":   len(snap.Lines),
		})
	}
	status := confirmed.Status
	if status == "" {
		status = "received"
	}
	return Output{OrderID: confirmed.OrderID, Status: status, Pricing: summary}, nil
}

func (s *Service) validate(in Input) error {
	if s.Validate == nil {
		return nil
	}
	if err := s.Validate.Struct(in.ShippingDetails); err != nil {
		fields := map[string]any{}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields[strings.ToLower(fe.Field())] = fe.Tag()
			}
		}
		return &common.AppError{
			Code:       common.CodeBadRequest,
			Message:    "shipping details are incomplete",
			HTTPStatus: http.StatusBadRequest,
			Err:        err,
			Details:    fields,
		}
	}
	return nil
}

func (s *Service) recordFailure() {
	if obs.CheckoutTotal != nil {
		obs.CheckoutTotal.WithLabelValues("failure").Inc()
	}
}
